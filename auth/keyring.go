// Package auth keeps the VLC HTTP interface password in the system keyring.
package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	service = "vlcremote"
	user    = "vlc-password"
)

// SetPassword stores the VLC HTTP password.
func SetPassword(password string) error {
	return keyring.Set(service, user, password)
}

// GetPassword returns the stored VLC HTTP password, or an empty string when
// none has been stored.
func GetPassword() (string, error) {
	password, err := keyring.Get(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return password, err
}

// DeletePassword removes the stored VLC HTTP password.
func DeletePassword() error {
	err := keyring.Delete(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
