// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package provision

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func TestSelfSigned(t *testing.T) {
	pair, err := SelfSigned()
	if err != nil {
		t.Fatal(err)
	}

	cert, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}

	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Fatalf("unexpected SANs: %v", cert.DNSNames)
	}
	if _, ok := pair.PrivateKey.(*rsa.PrivateKey); !ok {
		t.Fatalf("unexpected key type %T", pair.PrivateKey)
	}
}

func TestCachedSelfSigned(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	first, err := CachedSelfSigned("quicfile-test")
	if err != nil {
		t.Fatal(err)
	}

	second, err := CachedSelfSigned("quicfile-test")
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first.Certificate[0], second.Certificate[0]) {
		t.Fatal("second run did not reuse the cached certificate")
	}
}

func TestCachedCertPool(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// without a cached pair the pool must still come up
	if _, err := CachedCertPool("quicfile-test"); err != nil {
		t.Fatal(err)
	}

	if _, err := CachedSelfSigned("quicfile-test"); err != nil {
		t.Fatal(err)
	}
	if _, err := CachedCertPool("quicfile-test"); err != nil {
		t.Fatal(err)
	}
}

func TestLoadKeyPairDER(t *testing.T) {
	certDER, keyDER, err := generateSelfSigned()
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.der")
	keyPath := filepath.Join(dir, "key.der")
	if err := os.WriteFile(certPath, certDER, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyPath, keyDER, 0600); err != nil {
		t.Fatal(err)
	}

	pair, err := LoadKeyPair(certPath, keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pair.Certificate[0], certDER) {
		t.Fatal("certificate does not match")
	}
}

func TestLoadKeyPairPEM(t *testing.T) {
	certDER, keyDER, err := generateSelfSigned()
	if err != nil {
		t.Fatal(err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadKeyPair(certPath, keyPath); err != nil {
		t.Fatal(err)
	}
}

func TestPairFromDERPKCS1(t *testing.T) {
	certDER, keyDER, err := generateSelfSigned()
	if err != nil {
		t.Fatal(err)
	}

	key, err := x509.ParsePKCS8PrivateKey(keyDER)
	if err != nil {
		t.Fatal(err)
	}
	pkcs1 := x509.MarshalPKCS1PrivateKey(key.(*rsa.PrivateKey))

	if _, err := pairFromDER(certDER, pkcs1); err != nil {
		t.Fatal(err)
	}
}
