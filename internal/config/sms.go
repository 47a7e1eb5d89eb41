package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
)

type SMSConfig struct {
	APIKey string
	APIURL string
	Sender string
}

func NewSMSConfig() *SMSConfig {
	apiKey := os.Getenv("SMS_API_KEY")
	apiURL := os.Getenv("SMS_API_URL")
	sender := os.Getenv("SMS_SENDER_ID")
	if apiKey == "" || apiURL == "" || sender == "" {
		log.Fatal("Missing SMS gateway environment variables")
	}
	return &SMSConfig{APIKey: apiKey, APIURL: apiURL, Sender: sender}
}

type SMSRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

type SMSService struct {
	Config *SMSConfig
	client *http.Client
}

func NewSMSService(lc fx.Lifecycle, config *SMSConfig) *SMSService {
	service := &SMSService{
		Config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("SMS Service initialized")
			return nil
		},
	})
	return service
}

func (s *SMSService) SendSMS(to, message string) error {
	payload := SMSRequest{
		From:    s.Config.Sender,
		To:      to,
		Message: message,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("Failed to marshal SMS payload: %w", err)
	}

	req, err := http.NewRequest("POST", s.Config.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("Failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.Config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorResponse map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorResponse)
		return fmt.Errorf("Failed to send SMS, status code: %d, error: %v", resp.StatusCode, errorResponse)
	}

	log.Println("SMS sent successfully to ", to)
	return nil
}
