package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func writeCredentials(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".pwd")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("geheim"), bcrypt.MinCost)
	require.NoError(t, err)
	path := writeCredentials(t, "# admins\nadmin:secret\n\nkasse:"+string(hash)+"\nweird:pass:word\n")

	credentials, err := LoadCredentials(path)

	require.NoError(t, err)
	assert.Len(t, credentials, 3)
	assert.True(t, credentials.Verify("admin", "secret"))
	assert.False(t, credentials.Verify("admin", "Secret"))
	assert.True(t, credentials.Verify("kasse", "geheim"))
	assert.False(t, credentials.Verify("kasse", string(hash)))
	assert.True(t, credentials.Verify("weird", "pass:word"))
	assert.False(t, credentials.Verify("nobody", "secret"))
}

func TestLoadCredentials_Malformed(t *testing.T) {
	path := writeCredentials(t, "admin:secret\njustaname\n")

	_, err := LoadCredentials(path)

	assert.ErrorIs(t, err, ErrMalformedCredentials)
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadCredentials_MissingFile(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), "missing"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBasicAuth(t *testing.T) {
	protected := BasicAuth(Credentials{"admin": "secret"}, "Brunch Admin")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	tests := []struct {
		name     string
		user     string
		password string
		setAuth  bool
		want     int
	}{
		{"no credentials", "", "", false, http.StatusUnauthorized},
		{"wrong password", "admin", "guess", true, http.StatusUnauthorized},
		{"unknown user", "root", "secret", true, http.StatusUnauthorized},
		{"valid credentials", "admin", "secret", true, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			w := httptest.NewRecorder()

			protected.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Brunch Admin", charset="UTF-8"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
