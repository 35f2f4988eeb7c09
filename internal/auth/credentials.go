package auth

import (
	"bufio"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var ErrMalformedCredentials = errors.New("malformed credentials file")

// Credentials maps administrator names to their password. A password starting with "$2" is a
// bcrypt hash, anything else is compared as plain text.
type Credentials map[string]string

// LoadCredentials reads a file of "user:password" lines. Blank lines and lines starting with
// '#' are ignored.
func LoadCredentials(path string) (Credentials, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials file: %w", err)
	}
	defer file.Close()

	credentials := Credentials{}
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, password, found := strings.Cut(line, ":")
		if !found || user == "" || password == "" {
			return nil, fmt.Errorf("%w: line %d", ErrMalformedCredentials, lineNumber)
		}
		credentials[user] = password
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	log.Infof("Loaded %d administrator credentials from %s", len(credentials), path)
	return credentials, nil
}

func (c Credentials) Verify(user string, password string) bool {
	stored, ok := c[user]
	if !ok {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2")
}
