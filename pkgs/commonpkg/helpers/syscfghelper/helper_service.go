package syscfghelper

import (
	"context"

	"github.com/WangWilly/xChain/pkgs/commonpkg/clients/chromaeventclient"
	"github.com/WangWilly/xChain/pkgs/commonpkg/clients/embeddingclient"
	"github.com/WangWilly/xChain/pkgs/commonpkg/services"
	"github.com/gookit/color"
	log "github.com/sirupsen/logrus"
)

func (h *helper) GetEmbedder() (embeddingclient.Embedder, error) {
	return embeddingclient.New(h.sysConfig.Embedding)
}

func (h *helper) GetEventService() (*services.EventService, error) {
	db, err := h.GetDB()
	if err != nil {
		return nil, err
	}
	store, err := h.GetEventStore()
	if err != nil {
		return nil, err
	}
	embedder, err := h.GetEmbedder()
	if err != nil {
		return nil, err
	}

	log.WithField("caller", "syscfghelper.GetEventService").
		Infoln("embedding provider:", color.FgLightBlue.Render(providerName(h.sysConfig.Embedding.Provider)))
	return services.NewEventService(db, store, embedder), nil
}

func (h *helper) GetMirrorService(ctx context.Context) (*services.MirrorService, error) {
	db, err := h.GetDB()
	if err != nil {
		return nil, err
	}
	store, err := h.GetEventStore()
	if err != nil {
		return nil, err
	}

	chromaClient, err := chromaeventclient.New(ctx, h.sysConfig.Chroma.URL, h.sysConfig.Chroma.Collection)
	if err != nil {
		return nil, err
	}
	h.closer = append(h.closer, chromaClient.Close)

	return services.NewMirrorService(db, store, chromaClient), nil
}

func providerName(provider string) string {
	if provider == "" {
		return "local"
	}
	return provider
}
