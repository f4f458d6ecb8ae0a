package alpaca

import (
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type marketApi interface {
	GetCryptoBars(symbol string, req marketdata.GetCryptoBarsRequest) ([]marketdata.CryptoBar, error)
}

type alpacaApi struct {
	client *marketdata.Client
}

func newAlpacaApi(apiKey, secret, baseUrl string) *alpacaApi {
	return &alpacaApi{
		client: marketdata.NewClient(marketdata.ClientOpts{
			BaseURL:   baseUrl,
			APIKey:    apiKey,
			APISecret: secret,
		}),
	}
}

func (a *alpacaApi) GetCryptoBars(symbol string, req marketdata.GetCryptoBarsRequest) ([]marketdata.CryptoBar, error) {
	return a.client.GetCryptoBars(symbol, req)
}
