/*
Copyright 2026 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package sshkey generates the SSH keypair shared by the containers of a job.
package sshkey

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA modulus size of generated keys.
const DefaultBits = 2048

// ErrUnsupportedPlatform is returned on hosts without a POSIX ssh toolchain.
var ErrUnsupportedPlatform = errors.New("ssh key generation is not supported on this platform")

// KeyPair is a PEM encoded private key and its authorized_keys line.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// Generate creates a new RSA keypair. comment is appended to the public key.
func Generate(comment string) (*KeyPair, error) {
	return generate(runtime.GOOS, DefaultBits, comment)
}

func generate(goos string, bits int, comment string) (*KeyPair, error) {
	if goos == "windows" {
		return nil, ErrUnsupportedPlatform
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rsa key: %v", err)
	}
	privateKey := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	publicKey, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %v", err)
	}
	authorizedKey := strings.TrimSuffix(string(ssh.MarshalAuthorizedKey(publicKey)), "\n")
	if comment != "" {
		authorizedKey += " " + comment
	}

	return &KeyPair{
		PrivateKey: privateKey,
		PublicKey:  []byte(authorizedKey + "\n"),
	}, nil
}
