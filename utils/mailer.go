package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var (
	sesOnce   sync.Once
	sesClient *ses.Client
	sesErr    error
)

func sesClientOrErr() (*ses.Client, error) {
	sesOnce.Do(func() {
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(os.Getenv("AWS_REGION")))
		if err != nil {
			sesErr = err
			return
		}
		sesClient = ses.NewFromConfig(cfg)
	})
	return sesClient, sesErr
}

// generic SES sender
func sendEmail(to string, subject string, body string) error {
	client, err := sesClientOrErr()
	if err != nil {
		return fmt.Errorf("ses unavailable: %v", err)
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
		Source: aws.String(os.Getenv("SES_EMAIL")),
	}

	_, err = client.SendEmail(context.TODO(), input)
	if err != nil {
		log.Printf("SES send error: %v", err)
		return fmt.Errorf("email send failed: %v", err)
	}
	return nil
}

// SendEmergencyAlertEmail notifies the configured duty contact when a
// session crosses the emergency BAC threshold.
func SendEmergencyAlertEmail(to string, userID uint, bac float64, message string) error {
	subject := "EMERGENCY sobriety alert"
	body := fmt.Sprintf(
		"User %d has an estimated BAC of %.3f%%.\n\n%s\n\nCheck on the guest and consider intervention.",
		userID, bac, message,
	)
	return sendEmail(to, subject, body)
}
