package push

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// FCMGateway implements Gateway on Firebase Cloud Messaging.
type FCMGateway struct {
	client *messaging.Client
}

// NewFCMGateway wraps an initialized messaging client.
func NewFCMGateway(client *messaging.Client) *FCMGateway {
	return &FCMGateway{client: client}
}

// SendMulticast dispatches to all tokens in one multicast call.
func (g *FCMGateway) SendMulticast(ctx context.Context, tokens []string, msg *Message) (*MulticastResult, error) {
	multicast := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title:    msg.Title,
			Body:     msg.Body,
			ImageURL: msg.ImageURL,
		},
		Data: msg.Data,
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	batch, err := g.client.SendEachForMulticast(ctx, multicast)
	if err != nil {
		return nil, err
	}

	result := &MulticastResult{
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
		Responses:    make([]SendResponse, len(batch.Responses)),
	}
	for i, resp := range batch.Responses {
		result.Responses[i] = SendResponse{
			Token:        tokens[i],
			Success:      resp.Success,
			Unregistered: resp.Error != nil && messaging.IsUnregistered(resp.Error),
			Err:          resp.Error,
		}
	}
	return result, nil
}
