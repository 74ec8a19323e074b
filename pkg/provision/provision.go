// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package provision obtains the TLS certificate/key pair the server presents.
// Explicitly given files are loaded as PEM or DER, chosen by extension.
// Without explicit files, a self-signed pair is generated once and cached in
// the user's configuration directory, so repeated runs keep one identity.
package provision

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	cachedCertFile = "cert.der"
	cachedKeyFile  = "key.der"

	selfSignedValidity = 10 * 365 * 24 * time.Hour
)

// LoadKeyPair reads a certificate and key from explicit files. Files ending
// in ".der" are parsed as raw DER, everything else as PEM.
func LoadKeyPair(certPath, keyPath string) (tls.Certificate, error) {
	if strings.EqualFold(filepath.Ext(certPath), ".der") || strings.EqualFold(filepath.Ext(keyPath), ".der") {
		certDER, err := os.ReadFile(certPath)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("reading certificate: %w", err)
		}
		keyDER, err := os.ReadFile(keyPath)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("reading key: %w", err)
		}
		return pairFromDER(certDER, keyDER)
	}

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("loading PEM key pair: %w", err)
	}
	return cert, nil
}

// CachedSelfSigned returns the self-signed pair cached under the user's
// configuration directory for appName, generating and persisting it first if
// absent.
func CachedSelfSigned(appName string) (tls.Certificate, error) {
	dir, err := cacheDir(appName)
	if err != nil {
		return tls.Certificate{}, err
	}

	certPath := filepath.Join(dir, cachedCertFile)
	keyPath := filepath.Join(dir, cachedKeyFile)

	certDER, certErr := os.ReadFile(certPath)
	keyDER, keyErr := os.ReadFile(keyPath)
	if certErr == nil && keyErr == nil {
		return pairFromDER(certDER, keyDER)
	}
	if !errors.Is(certErr, os.ErrNotExist) && certErr != nil {
		return tls.Certificate{}, fmt.Errorf("reading cached certificate: %w", certErr)
	}
	if !errors.Is(keyErr, os.ErrNotExist) && keyErr != nil {
		return tls.Certificate{}, fmt.Errorf("reading cached key: %w", keyErr)
	}

	log.WithField("directory", dir).Info("Generating self-signed certificate")

	certDER, keyDER, err = generateSelfSigned()
	if err != nil {
		return tls.Certificate{}, err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return tls.Certificate{}, fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(certPath, certDER, 0644); err != nil {
		return tls.Certificate{}, fmt.Errorf("persisting certificate: %w", err)
	}
	if err := os.WriteFile(keyPath, keyDER, 0600); err != nil {
		return tls.Certificate{}, fmt.Errorf("persisting key: %w", err)
	}

	return pairFromDER(certDER, keyDER)
}

// SelfSigned generates an ephemeral pair without touching the cache.
func SelfSigned() (tls.Certificate, error) {
	certDER, keyDER, err := generateSelfSigned()
	if err != nil {
		return tls.Certificate{}, err
	}
	return pairFromDER(certDER, keyDER)
}

// CachedCertPool builds a root pool of the system roots plus the cached
// self-signed certificate, if one exists. Clients use it to trust a local
// server that provisioned itself.
func CachedCertPool(appName string) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	dir, err := cacheDir(appName)
	if err != nil {
		return pool, nil
	}

	certDER, err := os.ReadFile(filepath.Join(dir, cachedCertFile))
	if err != nil {
		// no cached identity, system roots it is
		return pool, nil
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("parsing cached certificate: %w", err)
	}
	pool.AddCert(cert)

	return pool, nil
}

func cacheDir(appName string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user configuration directory: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// generateSelfSigned creates a fresh RSA key and a matching certificate for
// "localhost", both DER-encoded.
func generateSelfSigned() (certDER, keyDER []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("generating private key: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		DNSNames:     []string{"localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(selfSignedValidity),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	certDER, err = x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("generating certificate: %w", err)
	}

	keyDER, err = x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding private key: %w", err)
	}

	return certDER, keyDER, nil
}

// pairFromDER assembles a tls.Certificate from raw DER blobs. The key may be
// PKCS#8 or PKCS#1 encoded.
func pairFromDER(certDER, keyDER []byte) (tls.Certificate, error) {
	key, err := x509.ParsePKCS8PrivateKey(keyDER)
	if err != nil {
		if rsaKey, rsaErr := x509.ParsePKCS1PrivateKey(keyDER); rsaErr == nil {
			key = rsaKey
		} else {
			return tls.Certificate{}, fmt.Errorf("parsing DER key: %w", err)
		}
	}

	return tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  key,
	}, nil
}
