package main

import (
	"io"
	"log"
	"net/http"
	"os"

	"github.com/rdservicos/portal/internal/auth"
	"github.com/rdservicos/portal/internal/catalog"
	"github.com/rdservicos/portal/internal/config"
	"github.com/rdservicos/portal/internal/gelf"
	"github.com/rdservicos/portal/internal/handler"
	"github.com/rdservicos/portal/internal/obs"
	"github.com/rdservicos/portal/internal/router"
	"github.com/rdservicos/portal/internal/service"
	"github.com/rdservicos/portal/internal/store"
)

func main() {
	cfg := config.Load()

	// GELF UDP logging
	if cfg.GelfAddr != "" {
		gelfWriter, err := gelf.New(cfg.GelfAddr)
		if err != nil {
			log.Printf("Warning: GELF init failed: %v", err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stderr, gelfWriter))
			log.Printf("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}

	obs.Init()

	// Credential store: the one dependency the portal cannot run without.
	creds, err := auth.LoadCredentials(cfg.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}

	// The service catalog degrades to empty on a missing or malformed
	// file; submissions then report unknown service instead of crashing.
	cat := catalog.Load(cfg.ServicesPath)
	if cat.Len() == 0 {
		log.Printf("Warning: no services configured, all submissions will be rejected")
	}

	st, err := store.NewFS(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open upload store: %v", err)
	}
	log.Printf("Upload store ready at %s", st.Root())

	// Services
	authSvc := service.NewAuthService(creds)
	subSvc := service.NewSubmissionService(cat, st)
	pedidoSvc := service.NewPedidoService(st)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	catalogH := handler.NewCatalogHandler(cat)
	pedidoH := handler.NewPedidoHandler(subSvc, pedidoSvc)

	// Router
	r := router.New(creds.Cookie().Key, authH, catalogH, pedidoH)

	log.Printf("RD Serviços portal starting on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
