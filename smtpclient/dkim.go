package smtpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sendkit/smtpsend"
	"github.com/sendkit/smtpsend/dkim"
)

// SendSigned is [Session.Send] with a DKIM-Signature header computed over
// msg's bytes and prepended to the transferred data (§1, §4.4). Signing
// never mutates msg: the message is read once in full to compute the
// signature, then the signed bytes (header line plus the original message)
// are streamed through the transparency writer exactly as Send streams an
// unsigned message.
func (s *Session) SendSigned(ctx context.Context, msg smtp.Message, params dkim.SignParams) ([]smtp.RecipientResult, error) {
	results, err := s.SendEnvelope(ctx, msg.From(), msg.Recipients(), msg.Size())
	if err != nil {
		return results, err
	}

	r, err := msg.Open()
	if err != nil {
		return results, fmt.Errorf("smtp: opening message: %w", err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return results, fmt.Errorf("smtp: reading message: %w", err)
	}

	sigHeader, err := dkim.Sign(params, body)
	if err != nil {
		return results, err
	}

	signed := io.MultiReader(strings.NewReader(sigHeader), bytes.NewReader(body))
	if err := s.Data(ctx, signed); err != nil {
		return results, err
	}
	return results, nil
}
