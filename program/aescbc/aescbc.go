// Package aescbc implements the in-place AES-128-CBC buffer encryptor
// program. The key schedule is expanded once at construction; each call
// chains from the configured IV.
package aescbc

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/datenlord/wbpf-userspace/hostcall"
	"github.com/datenlord/wbpf-userspace/program"
)

// BlockSize is the cipher block size in bytes.
const BlockSize = aes.BlockSize

// KeySize is the only accepted key length (AES-128).
const KeySize = 16

// Cipher encrypts and decrypts buffers in place using CBC chaining.
type Cipher struct {
	block cipher.Block
	iv    [BlockSize]byte
}

// New expands the key schedule and fixes the IV for subsequent calls.
func New(key, iv []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", BlockSize, len(iv))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	c := &Cipher{block: block}
	copy(c.iv[:], iv)
	return c, nil
}

// EncryptBuffer encrypts buf in place. Each plaintext block is XORed with the
// previous ciphertext block (the IV for the first) before encryption. A length
// that is not a multiple of the block size is rejected and buf is untouched.
func (c *Cipher) EncryptBuffer(buf []byte) error {
	if len(buf)%BlockSize != 0 {
		return fmt.Errorf("%w: %d bytes", program.ErrInvalidLength, len(buf))
	}

	prev := c.iv[:]
	for i := 0; i < len(buf); i += BlockSize {
		block := buf[i : i+BlockSize]
		for j := range block {
			block[j] ^= prev[j]
		}
		c.block.Encrypt(block, block)
		prev = block
	}
	return nil
}

// DecryptBuffer inverts EncryptBuffer in place.
func (c *Cipher) DecryptBuffer(buf []byte) error {
	if len(buf)%BlockSize != 0 {
		return fmt.Errorf("%w: %d bytes", program.ErrInvalidLength, len(buf))
	}

	var prev, next [BlockSize]byte
	copy(prev[:], c.iv[:])

	for i := 0; i < len(buf); i += BlockSize {
		block := buf[i : i+BlockSize]
		copy(next[:], block)
		c.block.Decrypt(block, block)
		for j := range block {
			block[j] ^= prev[j]
		}
		prev = next
	}
	return nil
}

// Job is the guest program: encrypt the caller-owned buffer once, then hand
// control back to the host terminally.
type Job struct {
	cipher *Cipher
	buf    []byte
}

// NewJob prepares an encryption of buf under key and iv. The caller owns buf
// for the duration of the invocation; the job mutates it in place.
func NewJob(buf, key, iv []byte) (*Job, error) {
	c, err := New(key, iv)
	if err != nil {
		return nil, err
	}
	return &Job{cipher: c, buf: buf}, nil
}

func (j *Job) Name() string { return "aes-cbc-encrypt" }

func (j *Job) Run(ctx context.Context, host *hostcall.Host) error {
	if err := j.cipher.EncryptBuffer(j.buf); err != nil {
		return err
	}
	host.Complete()
	return nil
}
