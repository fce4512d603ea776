package fetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
)

// ReadOnlyScope is the only scope the sync needs.
const ReadOnlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

// Credentials selects how requests are authorized. The first non-empty of
// JSONBase64, File and APIKey wins.
type Credentials struct {
	JSONBase64 string
	File       string
	APIKey     string
}

// ErrNoCredentials means none of the credential sources is set.
var ErrNoCredentials = errors.New("no Google credentials: set GCP_SA_JSON_BASE64, GOOGLE_APPLICATION_CREDENTIALS or RSFF_SHEETS_API_KEY")

// HTTPClient returns an authorized client plus the API key to send, if any.
func HTTPClient(ctx context.Context, creds Credentials, timeout time.Duration) (*http.Client, string, error) {
	var data []byte
	switch {
	case creds.JSONBase64 != "":
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(creds.JSONBase64))
		if err != nil {
			return nil, "", fmt.Errorf("decode service account base64: %w", err)
		}
		data = b
	case creds.File != "":
		b, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, "", fmt.Errorf("read service account file: %w", err)
		}
		data = b
	case creds.APIKey != "":
		return &http.Client{Timeout: timeout}, creds.APIKey, nil
	default:
		return nil, "", ErrNoCredentials
	}

	conf, err := google.JWTConfigFromJSON(data, ReadOnlyScope)
	if err != nil {
		return nil, "", fmt.Errorf("parse service account: %w", err)
	}
	hc := conf.Client(ctx)
	hc.Timeout = timeout
	return hc, "", nil
}
