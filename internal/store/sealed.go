package store

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 100000
	keyLen        = 32
	saltLen       = 16
	ivLen         = 12
	payloadV1     = 1
)

var ErrDecrypt = errors.New("store: cannot decrypt value (wrong passphrase?)")

var randReader io.Reader = rand.Reader

// Payload is the stored form of a sealed value. Binary fields are base64.
type Payload struct {
	V         int    `json:"v"`
	Encrypted string `json:"encrypted"`
	Salt      string `json:"salt"`
	IV        string `json:"iv"`
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfIterations, keyLen, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals data with a key derived from passphrase. Every call uses a
// fresh salt and IV.
func Encrypt(data, passphrase string) (Payload, error) {
	salt := make([]byte, saltLen)
	iv := make([]byte, ivLen)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return Payload{}, err
	}
	if _, err := io.ReadFull(randReader, iv); err != nil {
		return Payload{}, err
	}
	aead, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return Payload{}, err
	}
	enc := aead.Seal(nil, iv, []byte(data), nil)
	return Payload{
		V:         payloadV1,
		Encrypted: base64.StdEncoding.EncodeToString(enc),
		Salt:      base64.StdEncoding.EncodeToString(salt),
		IV:        base64.StdEncoding.EncodeToString(iv),
	}, nil
}

func Decrypt(p Payload, passphrase string) (string, error) {
	if p.V != payloadV1 {
		return "", fmt.Errorf("store: unsupported payload version %d", p.V)
	}
	enc, err := base64.StdEncoding.DecodeString(p.Encrypted)
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(p.Salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	iv, err := base64.StdEncoding.DecodeString(p.IV)
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}
	if len(iv) != ivLen {
		return "", ErrDecrypt
	}
	aead, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	out, err := aead.Open(nil, iv, enc, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(out), nil
}

// parsePayload reports whether raw is a sealed value.
func parsePayload(raw string) (Payload, bool) {
	var p Payload
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return p, false
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, false
	}
	return p, p.V != 0 && p.Encrypted != "" && p.Salt != "" && p.IV != ""
}

// Sealed encrypts values before they reach the wrapped store. Values that
// were saved unsealed are returned as they are.
type Sealed struct {
	KV
	passphrase string
}

// Seal wraps kv; an empty passphrase returns kv unchanged.
func Seal(kv KV, passphrase string) KV {
	if passphrase == "" {
		return kv
	}
	return &Sealed{KV: kv, passphrase: passphrase}
}

func (s *Sealed) Save(ctx context.Context, projectID, key, value string) error {
	p, err := Encrypt(value, s.passphrase)
	if err != nil {
		return fmt.Errorf("seal value: %w", err)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.KV.Save(ctx, projectID, key, string(b))
}

func (s *Sealed) Load(ctx context.Context, projectID, key string) (string, error) {
	raw, err := s.KV.Load(ctx, projectID, key)
	if err != nil {
		return "", err
	}
	p, ok := parsePayload(raw)
	if !ok {
		return raw, nil
	}
	return Decrypt(p, s.passphrase)
}

var passphraseSymbols = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)

// CheckPassphrase scores a passphrase from 0 to 5 and lists what is missing.
func CheckPassphrase(p string) (int, []string) {
	var feedback []string
	score := 0
	if len(p) >= 8 {
		score++
	} else {
		feedback = append(feedback, "use at least 8 characters")
	}
	if len(p) >= 12 {
		score++
	}
	if strings.ToLower(p) != p && strings.ToUpper(p) != p {
		score++
	} else {
		feedback = append(feedback, "mix upper and lower case letters")
	}
	if strings.ContainsAny(p, "0123456789") {
		score++
	} else {
		feedback = append(feedback, "add a digit")
	}
	if passphraseSymbols.MatchString(p) {
		score++
	}
	return score, feedback
}
