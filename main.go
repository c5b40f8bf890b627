package main

import (
	"embed"
	"log"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/chazu/nodegraph/pkg/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	app := NewApp(cfg, cfg.Logger(os.Stderr))

	err = wails.Run(&options.App{
		Title:  "Node Graph",
		Width:  int(cfg.Viewport.Width),
		Height: int(cfg.Viewport.Height),
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
