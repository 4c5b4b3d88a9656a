package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/themrgeek/AbodeX/utils"
)

var smsClient = &http.Client{Timeout: 10 * time.Second}

// SendSMS posts a message to the configured SMS provider. Callers on the
// booking-confirmation path treat failures as non-fatal.
func SendSMS(ctx context.Context, phone, message string) error {
	apiURL := os.Getenv("SMS_API_URL")
	apiKey := os.Getenv("SMS_API_KEY")

	if apiURL == "" {
		utils.Logger().Infow("[MOCK SMS]", "to", phone, "message", message)
		return nil
	}

	body, err := json.Marshal(map[string]string{"to": phone, "message": message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := smsClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("sms provider returned %d", res.StatusCode)
	}
	return nil
}
