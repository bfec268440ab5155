// Package gmail sends plain-text mail through the Gmail API. The bot uses it
// to deliver failure alerts to its operators.
//
// Example usage:
//
//	client, err := gmail.NewClientForAccount(ctx, "default", creds, provider)
//	if err != nil {
//	    return err
//	}
//	id, err := client.SendEmail(ctx, &gmail.EmailMessage{
//	    To:      []string{"ops@example.com"},
//	    Subject: "calendar creation failed",
//	    Body:    "...",
//	})
package gmail
