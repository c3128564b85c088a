package gateway

import "fmt"

// FailureKind is the error taxonomy of the gateway. Every failure reaches
// the caller as a *Failure value; nothing is thrown past this boundary.
type FailureKind string

const (
	// FailureAuthRequired means no session was present. The request never
	// reached the network.
	FailureAuthRequired FailureKind = "auth_required"
	// FailureNetwork means the transport produced no response.
	FailureNetwork FailureKind = "network_error"
	// FailureServerRejected means the remote returned a non-success status
	// or an unrecognizable success body.
	FailureServerRejected FailureKind = "server_rejected"
)

// Failure is the typed request failure.
type Failure struct {
	Kind    FailureKind
	Message string
	Detail  string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", f.Kind, f.Message, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func authRequired() *Failure {
	return &Failure{Kind: FailureAuthRequired, Message: "not logged in"}
}

func networkError(err error) *Failure {
	return &Failure{Kind: FailureNetwork, Message: "no response from server", Detail: err.Error()}
}

func serverRejected(message string) *Failure {
	if message == "" {
		message = "request rejected"
	}
	return &Failure{Kind: FailureServerRejected, Message: message}
}
