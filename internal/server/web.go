package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/vaulth/vhindex/pkg/credman"
	"golang.org/x/net/websocket"
)

// WebServer is a small websocket listener a browser extension can push
// captured grabber credentials to (§3.1's GrabberCredential directive),
// adapted from the teacher's browser-extension download-capture endpoint:
// same one-shot JSON-over-websocket capture shape, now storing a secret
// into the credential vault instead of starting a download.
type WebServer struct {
	port   int
	l      *log.Logger
	vault  *credman.GrabberVault
	server *http.Server
	mu     sync.Mutex
}

// capturedCredential is the wire shape a browser extension posts after a
// user completes an authenticated-site login flow it wants a grabber to
// reuse.
type capturedCredential struct {
	GrabberID string `json:"grabber_id"`
	Secret    string `json:"secret"`
}

// NewWebServer creates a credential-capture listener bound to vault. vault
// may be nil, in which case captures are logged and discarded.
func NewWebServer(l *log.Logger, vault *credman.GrabberVault, port int) *WebServer {
	return &WebServer{port: port, l: l, vault: vault}
}

func (s *WebServer) processCapture(cc *capturedCredential) error {
	if cc.GrabberID == "" {
		return fmt.Errorf("web: captured credential missing grabber_id")
	}
	if s.vault == nil {
		s.l.Printf("web: discarding captured credential for %s: no vault configured", cc.GrabberID)
		return nil
	}
	return s.vault.Set(cc.GrabberID, cc.Secret)
}

func (s *WebServer) handleConnection(conn *websocket.Conn) {
	defer conn.Close()
	for {
		var data []byte
		err := websocket.Message.Receive(conn, &data)
		if err != nil {
			if err == io.EOF {
				s.l.Println("Connection closed")
				return
			}
			s.l.Println("Error receiving message: ", err)
			return
		}
		var cc capturedCredential
		if err := json.Unmarshal(data, &cc); err != nil {
			s.l.Println("Error unmarshalling data: ", err)
			continue
		}
		if err := s.processCapture(&cc); err != nil {
			s.l.Println("Error processing captured credential: ", err)
			continue
		}
	}
}

func (s *WebServer) handler() http.Handler {
	return websocket.Handler(s.handleConnection)
}

func (s *WebServer) addr() string {
	return fmt.Sprintf(":%d", s.port)
}

func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // Expected during shutdown
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
