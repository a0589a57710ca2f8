// cmd/seed/main.go — Inserta un proveedor y un cliente de demo para un tenant.
// Uso: go run ./cmd/seed -tenant demo
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"corralon/internal/config"
	"corralon/internal/infra"
	"corralon/internal/model"
	"corralon/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	tenant := flag.String("tenant", "demo", "tenant_id de las filas de demo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	repo := repository.NewEntidadRepository(db)

	existentes, err := repo.ListProveedores(ctx, *tenant)
	if err != nil {
		log.Fatal().Err(err).Msg("list proveedores")
	}
	if len(existentes) > 0 {
		log.Info().Str("tenant", *tenant).Int("proveedores", len(existentes)).Msg("seed ya aplicado, nada que hacer")
		return
	}

	email := "ventas@cementos-demo.com.ar"
	prov := &model.Proveedor{
		TenantID:    *tenant,
		RazonSocial: "Cementos del Sur SA",
		CUIT:        "30-71234567-8",
		Email:       &email,
		Activo:      true,
	}
	if err := repo.CreateProveedor(ctx, prov); err != nil {
		log.Fatal().Err(err).Msg("insert proveedor")
	}

	limite := decimal.NewFromInt(500000)
	cuit := "20-28765432-1"
	cli := &model.Cliente{
		TenantID:      *tenant,
		Nombre:        "Constructora Lopez",
		CUIT:          &cuit,
		LimiteCredito: &limite,
		Activo:        true,
	}
	if err := repo.CreateCliente(ctx, cli); err != nil {
		log.Fatal().Err(err).Msg("insert cliente")
	}

	log.Info().
		Str("tenant", *tenant).
		Str("proveedor_id", prov.ID.String()).
		Str("cliente_id", cli.ID.String()).
		Msg("seed aplicado")
}
