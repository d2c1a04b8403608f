package adapter

import (
	"crypto/rand"

	"github.com/flynn/noise"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gotcp-project/gotcp-engine/tcp"
)

// NoiseCarrier wraps a SegmentCarrier with a Noise XX handshake and
// AEAD framing, grounded on the teacher's securityExtension. The
// handshake runs lazily on the first WriteSegment/ReadSegment, exactly
// as the teacher's extension does, so the caller doesn't need a
// separate handshake phase.
type NoiseCarrier struct {
	Inner     SegmentCarrier
	Initiator bool
	Log       *logrus.Entry

	codec     Codec
	handshake *noise.HandshakeState
	encrypter *noise.CipherState
	decrypter *noise.CipherState
}

func (n *NoiseCarrier) Open() error  { return n.Inner.Open() }
func (n *NoiseCarrier) Close() error { return n.Inner.Close() }

// WriteSegment encrypts the encoded segment and forwards it to Inner.
func (n *NoiseCarrier) WriteSegment(seg tcp.Segment) error {
	if n.handshake == nil {
		if err := n.runHandshake(); err != nil {
			return err
		}
	}
	plaintext := n.codec.Encode(seg)
	ciphertext, err := n.encrypter.Encrypt(nil, nil, plaintext)
	if err != nil {
		return errors.Wrap(err, "adapter: noise encrypt failed")
	}
	return n.Inner.WriteSegment(ciphertextSegment(ciphertext))
}

// ReadSegment reads an encrypted datagram from Inner and decrypts it.
func (n *NoiseCarrier) ReadSegment() (tcp.Segment, error) {
	if n.handshake == nil {
		if err := n.runHandshake(); err != nil {
			return tcp.Segment{}, err
		}
	}
	wrapped, err := n.Inner.ReadSegment()
	if err != nil {
		return tcp.Segment{}, err
	}
	plaintext, err := n.decrypter.Decrypt(nil, nil, wrapped.Payload)
	if err != nil {
		return tcp.Segment{}, errors.Wrap(err, "adapter: noise decrypt failed")
	}
	return n.codec.Decode(plaintext)
}

// ciphertextSegment smuggles an opaque encrypted blob through the
// inner carrier's normal Segment framing, using Payload as the carrier
// and leaving every flag clear so the inner codec's length-prefixed
// framing round-trips the bytes untouched.
func ciphertextSegment(ciphertext []byte) tcp.Segment {
	return tcp.Segment{Payload: ciphertext}
}

func (n *NoiseCarrier) runHandshake() error {
	suite := noise.NewCipherSuite(noise.DH25519, noise.CipherAESGCM, noise.HashBLAKE2b)
	key, err := suite.GenerateKeypair(rand.Reader)
	if err != nil {
		return errors.Wrap(err, "adapter: generate noise keypair")
	}
	n.handshake, err = noise.NewHandshakeState(noise.Config{
		CipherSuite:   suite,
		Random:        rand.Reader,
		Pattern:       noise.HandshakeXX,
		Initiator:     n.Initiator,
		StaticKeypair: key,
	})
	if err != nil {
		return errors.Wrap(err, "adapter: init noise handshake")
	}

	if n.Initiator {
		if err := n.writeHandshakeMessage(); err != nil {
			return err
		}
		if err := n.readHandshakeMessage(); err != nil {
			return err
		}
		n.encrypter, n.decrypter, err = n.finalHandshakeMessage()
	} else {
		if err := n.readHandshakeMessage(); err != nil {
			return err
		}
		if err := n.writeHandshakeMessage(); err != nil {
			return err
		}
		n.decrypter, n.encrypter, err = n.finalHandshakeMessage()
	}
	if err != nil {
		return err
	}
	if n.Log != nil {
		n.Log.Info("noise handshake complete")
	}
	return nil
}

func (n *NoiseCarrier) writeHandshakeMessage() error {
	msg, _, _, err := n.handshake.WriteMessage(nil, nil)
	if err != nil {
		return errors.Wrap(err, "adapter: build noise handshake message")
	}
	return n.Inner.WriteSegment(ciphertextSegment(msg))
}

func (n *NoiseCarrier) readHandshakeMessage() error {
	wrapped, err := n.Inner.ReadSegment()
	if err != nil {
		return err
	}
	_, _, _, err = n.handshake.ReadMessage(nil, wrapped.Payload)
	if err != nil {
		return errors.Wrap(err, "adapter: parse noise handshake message")
	}
	return nil
}

// finalHandshakeMessage exchanges the third XX message, which is where
// the two CipherStates come out: an initiator writes it, a responder
// reads it here.
func (n *NoiseCarrier) finalHandshakeMessage() (*noise.CipherState, *noise.CipherState, error) {
	if n.Initiator {
		msg, cs0, cs1, err := n.handshake.WriteMessage(nil, nil)
		if err != nil {
			return nil, nil, errors.Wrap(err, "adapter: build final noise handshake message")
		}
		if err := n.Inner.WriteSegment(ciphertextSegment(msg)); err != nil {
			return nil, nil, err
		}
		return cs0, cs1, nil
	}
	wrapped, err := n.Inner.ReadSegment()
	if err != nil {
		return nil, nil, err
	}
	_, cs0, cs1, err := n.handshake.ReadMessage(nil, wrapped.Payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, "adapter: parse final noise handshake message")
	}
	return cs0, cs1, nil
}
