// Package tlsverify checks the gateway's certificate chain against a pinned CA
// bundle and reports failures with OpenSSL-style verify result codes.
package tlsverify

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/Checker-Finance/braintree-go/internal/metrics"
	"github.com/Checker-Finance/braintree-go/pkg/apierrors"
)

// Verify result codes, numbered as OpenSSL's X509_V_ERR_* constants.
const (
	CodeOK                         = 0
	CodeUnspecified                = 1
	CodeCertificateExpired         = 10
	CodeSelfSignedCertificate      = 18
	CodeSelfSignedCertInChain      = 19
	CodeUnableToGetIssuerCertLocal = 20
	CodeInvalidCA                  = 24
	CodeHostnameMismatch           = 62
)

var reasons = map[int]string{
	CodeOK:                         "ok",
	CodeUnspecified:                "unspecified certificate verification error",
	CodeCertificateExpired:         "certificate has expired",
	CodeSelfSignedCertificate:      "self signed certificate",
	CodeSelfSignedCertInChain:      "self signed certificate in certificate chain",
	CodeUnableToGetIssuerCertLocal: "unable to get local issuer certificate",
	CodeInvalidCA:                  "invalid CA certificate",
	CodeHostnameMismatch:           "hostname mismatch",
}

// Reason returns the human-readable text for a verify result code.
func Reason(code int) string {
	if r, ok := reasons[code]; ok {
		return r
	}
	return fmt.Sprintf("verify error %d", code)
}

// Verifier validates peer chains against a fixed root pool.
type Verifier struct {
	logger *zap.Logger
	roots  *x509.CertPool
}

// New creates a Verifier. A nil roots pool means the system roots.
func New(logger *zap.Logger, roots *x509.CertPool) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{logger: logger, roots: roots}
}

// LoadRoots reads a PEM bundle of trusted roots. An empty path selects the
// system pool.
func LoadRoots(caFile string) (*x509.CertPool, error) {
	if caFile == "" {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("load system roots: %w", err)
		}
		return pool, nil
	}

	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, &apierrors.ConfigurationError{Setting: "ca_file", Message: "could not be read: " + err.Error()}
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, &apierrors.ConfigurationError{Setting: "ca_file", Message: "contains no PEM certificates"}
	}
	return pool, nil
}

// Verify accepts only a chain that passed pre-verification with result code 0.
// Anything else is logged once and returned as *apierrors.SSLCertificateError.
func (v *Verifier) Verify(preverify bool, code int) error {
	if preverify && code == CodeOK {
		return nil
	}

	err := &apierrors.SSLCertificateError{Preverify: preverify, Code: code, Reason: Reason(code)}
	v.logger.Error("SSL Verification failed -- "+err.Error(),
		zap.Bool("preverify", preverify),
		zap.Int("code", code))
	metrics.IncSSLVerificationFailure(strconv.Itoa(code))
	return err
}

// VerifyChain verifies the presented chain (leaf first) for serverName.
func (v *Verifier) VerifyChain(serverName string, certs []*x509.Certificate) error {
	if len(certs) == 0 {
		return v.Verify(false, CodeUnspecified)
	}

	intermediates := x509.NewCertPool()
	for _, c := range certs[1:] {
		intermediates.AddCert(c)
	}

	_, err := certs[0].Verify(x509.VerifyOptions{
		Roots:         v.roots,
		Intermediates: intermediates,
		DNSName:       serverName,
	})
	if err != nil {
		return v.Verify(false, Classify(certs, err))
	}
	return v.Verify(true, CodeOK)
}

// TLSConfig returns a client config that routes chain verification through
// VerifyChain. serverName is used when the handshake carries no SNI.
func (v *Verifier) TLSConfig(serverName string) *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: serverName,
		// the chain is checked in VerifyConnection against the pinned roots
		InsecureSkipVerify: true, //nolint:gosec
		VerifyConnection: func(cs tls.ConnectionState) error {
			name := cs.ServerName
			if name == "" {
				name = serverName
			}
			return v.VerifyChain(name, cs.PeerCertificates)
		},
	}
}

// Classify maps an x509 verification error onto a verify result code.
func Classify(certs []*x509.Certificate, err error) int {
	var unknown x509.UnknownAuthorityError
	var invalid x509.CertificateInvalidError
	var hostname x509.HostnameError

	switch {
	case errors.As(err, &unknown):
		if len(certs) == 0 {
			return CodeUnableToGetIssuerCertLocal
		}
		for _, c := range certs[1:] {
			if isSelfSigned(c) {
				return CodeSelfSignedCertInChain
			}
		}
		if isSelfSigned(certs[0]) {
			return CodeSelfSignedCertificate
		}
		return CodeUnableToGetIssuerCertLocal
	case errors.As(err, &invalid):
		switch invalid.Reason {
		case x509.Expired:
			return CodeCertificateExpired
		case x509.NotAuthorizedToSign:
			return CodeInvalidCA
		}
		return CodeUnspecified
	case errors.As(err, &hostname):
		return CodeHostnameMismatch
	}
	return CodeUnspecified
}

func isSelfSigned(c *x509.Certificate) bool {
	if !bytes.Equal(c.RawIssuer, c.RawSubject) {
		return false
	}
	return c.CheckSignature(c.SignatureAlgorithm, c.RawTBSCertificate, c.Signature) == nil
}
