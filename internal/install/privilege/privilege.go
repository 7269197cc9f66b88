package privilege

import (
	"errors"
	"os"
)

var ErrNotRoot = errors.New("this command must be run as root or with sudo")

var geteuid = os.Geteuid

func RequireRoot() error {
	if geteuid() != 0 {
		return ErrNotRoot
	}
	return nil
}
