package cli

import (
	"github.com/RatTrap1337/Zoho-Attendance-Manager/internal/config"
	"github.com/RatTrap1337/Zoho-Attendance-Manager/internal/token"
	"github.com/RatTrap1337/Zoho-Attendance-Manager/internal/zoho"
	logx "github.com/RatTrap1337/Zoho-Attendance-Manager/pkg/logx"
)

// app holds the wired components shared by all commands.
type app struct {
	cfg    config.Config
	log    logx.Logger
	store  token.Store // may be nil (persistence disabled)
	cache  *token.Cache
	client *zoho.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log := logx.New(logx.Config{
		Level:   cfg.LogLevel,
		Console: true,
		File:    logx.FileConfig{Enabled: cfg.LogFile != "", Path: cfg.LogFile},
	})

	store, err := token.OpenStore(token.StoreConfig{Driver: cfg.TokenStore, Path: cfg.TokenFile}, log)
	if err != nil {
		return nil, err
	}

	cache := token.NewCache(token.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
		AccountsURL:  cfg.AccountsURL,
		HTTPTimeout:  cfg.HTTPTimeout,
	}, store, log)

	client := zoho.New(zoho.Config{
		PeopleURL:   cfg.PeopleURL,
		HTTPTimeout: cfg.HTTPTimeout,
	}, cache, log)

	return &app{cfg: cfg, log: log, store: store, cache: cache, client: client}, nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}
