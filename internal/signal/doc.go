// Package signal sends failure alerts to operators over Signal Messenger.
//
// The client wraps the signal-cli command-line tool, which must be installed
// and registered for the sending number:
//
//	signal-cli -u +15551234567 register
//	signal-cli -u +15551234567 verify CODE
//
// Example usage:
//
//	client, err := signal.NewClient("+15551234567", signal.WithTimeout(10*time.Second))
//	if err != nil {
//	    return err
//	}
//	err = client.Send(ctx, "+15559876543", "calendar creation failed")
package signal
