package lemmy

import (
	"net/http"
	"sync/atomic"
)

// DefaultInstance is used while no account is active.
const DefaultInstance = "lemmy.ml"

const apiVersion = "v3"

type binding struct {
	instance string
	client   *Client
}

// Host binds the active server instance to a configured client. Rebinding
// swaps a fully built client in one atomic store, so a reader always sees
// a matching (instance, client) pair, never a half-rebuilt one.
type Host struct {
	httpClient *http.Client
	current    atomic.Pointer[binding]
}

func NewHost(instance string, httpClient *http.Client) *Host {
	if instance == "" {
		instance = DefaultInstance
	}
	h := &Host{httpClient: httpClient}
	h.current.Store(&binding{
		instance: instance,
		client:   NewInstanceClient(instance, httpClient),
	})
	return h
}

// SetInstance rebinds the host. The new client is constructed before the
// swap; requests already in flight keep the client they started with.
func (h *Host) SetInstance(instance string) {
	if instance == "" {
		instance = DefaultInstance
	}
	if h.Instance() == instance {
		return
	}
	h.current.Store(&binding{
		instance: instance,
		client:   NewInstanceClient(instance, h.httpClient),
	})
}

func (h *Host) Instance() string {
	return h.current.Load().instance
}

// Client returns the client bound at the moment of the call. Callers make
// all requests of one logical operation through a single returned client.
func (h *Host) Client() *Client {
	return h.current.Load().client
}

// Current returns the instance and its client from one snapshot.
func (h *Host) Current() (string, *Client) {
	b := h.current.Load()
	return b.instance, b.client
}
