package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/themrgeek/AbodeX/utils"
)

// PaymentClient is a thin client for a Stripe-style payment gateway. Without
// PAYMENT_API_URL it runs in mock mode: intents are fabricated locally and
// always confirm, which keeps development and tests off the network.
type PaymentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPaymentClient() *PaymentClient {
	return &PaymentClient{
		baseURL:    os.Getenv("PAYMENT_API_URL"),
		apiKey:     os.Getenv("PAYMENT_API_KEY"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type PaymentIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret,omitempty"`
}

type createIntentRequest struct {
	Amount    int64  `json:"amount"` // minor units
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
}

func (c *PaymentClient) CreateIntent(ctx context.Context, amount float64, currency, reference string) (*PaymentIntent, error) {
	if c.baseURL == "" {
		intent := &PaymentIntent{
			ID:     "pi_" + utils.GenerateShortToken(12),
			Status: "requires_confirmation",
		}
		utils.Logger().Infow("[MOCK PAYMENT] intent created", "id", intent.ID, "amount", amount, "reference", reference)
		return intent, nil
	}

	body, err := json.Marshal(createIntentRequest{
		Amount:    int64(math.Round(amount * 100)),
		Currency:  currency,
		Reference: reference,
	})
	if err != nil {
		return nil, err
	}

	return c.do(ctx, http.MethodPost, "/v1/payment_intents", body)
}

func (c *PaymentClient) ConfirmIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	if c.baseURL == "" {
		utils.Logger().Infow("[MOCK PAYMENT] intent confirmed", "id", intentID)
		return &PaymentIntent{ID: intentID, Status: "succeeded"}, nil
	}

	return c.do(ctx, http.MethodPost, "/v1/payment_intents/"+intentID+"/confirm", nil)
}

func (c *PaymentClient) do(ctx context.Context, method, path string, body []byte) (*PaymentIntent, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("payment gateway returned %d", res.StatusCode)
	}

	var intent PaymentIntent
	if err := json.NewDecoder(res.Body).Decode(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
