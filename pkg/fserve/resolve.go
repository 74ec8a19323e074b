// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvePath maps an untrusted request path onto the served root.
//
// The request path must be absolute. Every component must be a plain name:
// "."/".." references and anything resembling a drive or separator escape are
// rejected outright instead of being normalized, so a resolved path can never
// leave the root no matter how the input nests. Repeated slashes collapse.
func ResolvePath(root string, requestPath string) (string, error) {
	if !strings.HasPrefix(requestPath, "/") {
		return "", fmt.Errorf("%w: path must be absolute", ErrIllegalPath)
	}

	resolved := root
	for _, component := range strings.Split(requestPath[1:], "/") {
		if component == "" {
			continue
		}
		if err := checkComponent(component); err != nil {
			return "", err
		}
		resolved = filepath.Join(resolved, component)
	}

	return resolved, nil
}

func checkComponent(component string) error {
	switch component {
	case ".", "..":
		return fmt.Errorf("%w: directory reference %q", ErrIllegalPath, component)
	}

	// backslashes and colons are never plain names, they smell like Windows
	// separators or drive letters
	if strings.ContainsAny(component, "\\:") {
		return fmt.Errorf("%w: illegal component %q", ErrIllegalPath, component)
	}

	return nil
}
