// Package sshx loads and generates the keys used to reach the fleet.
package sshx

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// ErrLoadKey returned when the private key cannot be used for authentication.
const ErrLoadKey = "failed to load SSH key"

// Signer loads the pem encoded private key at path. passphrase protected keys
// are not supported.
func Signer(path string) (s ssh.Signer, err error) {
	var (
		encoded []byte
	)

	if encoded, err = os.ReadFile(path); err != nil {
		return nil, errors.Wrap(err, ErrLoadKey)
	}

	if s, err = ssh.ParsePrivateKey(encoded); err != nil {
		return nil, errors.Wrap(err, ErrLoadKey)
	}

	return s, nil
}

// UnsafeAuto generates a small ssh key quickly, for tests.
func UnsafeAuto() (pkey []byte, err error) {
	return Generate(1024)
}

// Generate a RSA private key with the given bits size, returns the pem encoded bytes.
func Generate(bits int) (encoded []byte, err error) {
	var (
		pkey *rsa.PrivateKey
	)

	if pkey, err = rsa.GenerateKey(rand.Reader, bits); err != nil {
		return encoded, errors.WithStack(err)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(pkey),
	}), nil
}
