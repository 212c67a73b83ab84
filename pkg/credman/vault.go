package credman

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/vaulth/vhindex/pkg/credman/encryption"
)

// GrabberVault persists one secret per grabber id (§3.1's GrabberCredential
// config directive), encrypted at rest with the same AES-GCM + GOB pattern
// CookieManager uses for cookie values — generalised from "one named
// cookie" to "one named grabber secret" since a grabber plugin's API key or
// login token has the same at-rest-confidentiality requirement as a cookie
// value but no cookie-specific fields (Domain/Expires/MaxAge/HttpOnly).
type GrabberVault struct {
	f        *os.File
	filePath string
	key      []byte
	secrets  map[string]string
}

// NewGrabberVault opens (creating if absent) the encrypted secret store at
// filePath, keyed with key (32 bytes, AES-256).
func NewGrabberVault(filePath string, key []byte) (*GrabberVault, error) {
	v := &GrabberVault{filePath: filePath, key: key, secrets: make(map[string]string)}
	if err := v.load(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *GrabberVault) load() error {
	var err error
	v.f, err = os.OpenFile(v.filePath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(v.f)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(&v.secrets)
}

func (v *GrabberVault) save() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v.secrets); err != nil {
		return err
	}
	if err := v.f.Truncate(0); err != nil {
		return err
	}
	if _, err := v.f.Seek(0, 0); err != nil {
		return err
	}
	_, err := v.f.Write(buf.Bytes())
	return err
}

// Set stores secret for grabberID, encrypting it before persisting.
func (v *GrabberVault) Set(grabberID, secret string) error {
	enc, err := encryption.EncryptValue(secret, v.key)
	if err != nil {
		return err
	}
	v.secrets[grabberID] = string(enc)
	return v.save()
}

// Get returns the decrypted secret for grabberID.
func (v *GrabberVault) Get(grabberID string) (string, error) {
	enc, ok := v.secrets[grabberID]
	if !ok {
		return "", fmt.Errorf("credman: no secret stored for grabber %q", grabberID)
	}
	dec, err := encryption.DecryptValue([]byte(enc), v.key)
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

// Delete removes grabberID's secret, if present.
func (v *GrabberVault) Delete(grabberID string) error {
	delete(v.secrets, grabberID)
	return v.save()
}

// Close persists any pending writes and releases the underlying file.
func (v *GrabberVault) Close() error {
	defer v.f.Close()
	return v.save()
}
