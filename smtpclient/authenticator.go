package smtpclient

import (
	"encoding/base64"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sendkit/smtpsend"
	"github.com/sendkit/smtpsend/internal/textproto"
)

// authenticate drives the AUTH challenge/response exchange for mech over
// conn (§4.3). It never logs challenge, response, or credential bytes —
// only the mechanism name and the outcome.
func authenticate(conn *textproto.Conn, mech smtp.SASLMechanism, log *logrus.Entry) error {
	log = log.WithField("mechanism", mech.Name())

	initial, err := mech.Start()
	if err != nil {
		return fmt.Errorf("smtp: auth start: %w", err)
	}

	cmd := "AUTH " + mech.Name()
	if initial != nil {
		cmd += " " + base64.StdEncoding.EncodeToString(initial)
	}
	if err := conn.WriteLine(cmd); err != nil {
		return ioError(err)
	}

	for {
		reply, err := conn.ReadReply()
		if err != nil {
			log.WithError(err).Debug("auth: read failed")
			return ioError(err)
		}

		switch {
		case reply.Code/100 == 2:
			log.Debug("auth: succeeded")
			return nil
		case reply.Code == 334:
			// Continue the challenge/response loop below.
		case reply.Code/100 == 5:
			log.Debug("auth: rejected (5xx)")
			return smtp.AuthenticationFailedError(toReply(reply))
		case reply.Code/100 == 4:
			log.Debug("auth: rejected (4xx)")
			return smtp.TemporaryAuthFailureError(toReply(reply))
		default:
			return smtp.UnexpectedCodeError(2, toReply(reply))
		}

		var challengeText string
		if len(reply.Lines) > 0 {
			challengeText = reply.Lines[0]
		}
		challenge, err := base64.StdEncoding.DecodeString(challengeText)
		if err != nil {
			return smtp.InvalidResponseError("auth: challenge is not valid base64")
		}

		resp, err := mech.Next(challenge)
		if err != nil {
			conn.WriteLine("*")
			conn.ReadReply()
			return fmt.Errorf("smtp: auth mechanism: %w", err)
		}

		encoded := base64.StdEncoding.EncodeToString(resp)
		if err := conn.WriteLine(encoded); err != nil {
			return ioError(err)
		}
	}
}
