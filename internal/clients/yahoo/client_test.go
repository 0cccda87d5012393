package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.NotEmpty(t, r.URL.Query().Get("symbols"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGetQuote(t *testing.T) {
	body := `{"quoteResponse":{"result":[{
		"symbol":"AAPL",
		"longName":"Apple Inc.",
		"shortName":"Apple",
		"currentPrice":190.5,
		"regularMarketPrice":189.9,
		"marketCap":2950000000000,
		"sector":"Technology",
		"industry":"Consumer Electronics",
		"country":"United States",
		"fullExchangeName":"NasdaqGS",
		"currency":"USD",
		"forwardPE":28.4,
		"trailingPE":31.1,
		"dividendYield":0.55
	}],"error":null}}`
	server := quoteServer(t, body, http.StatusOK)
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	require.NotNil(t, quote.Name)
	assert.Equal(t, "Apple Inc.", *quote.Name)
	require.NotNil(t, quote.Price)
	assert.Equal(t, 190.5, *quote.Price)
	require.NotNil(t, quote.MarketCap)
	assert.Equal(t, int64(2950000000000), *quote.MarketCap)
	require.NotNil(t, quote.Sector)
	assert.Equal(t, "Technology", *quote.Sector)
	require.NotNil(t, quote.PERatio)
	assert.Equal(t, 28.4, *quote.PERatio)
	require.NotNil(t, quote.Currency)
	assert.Equal(t, "USD", *quote.Currency)
}

func TestGetQuoteFallbackFields(t *testing.T) {
	// No longName, no currentPrice, no forwardPE: fall back to shortName,
	// regularMarketPrice, trailingPE.
	body := `{"quoteResponse":{"result":[{
		"symbol":"BMW.DE",
		"shortName":"BMW",
		"regularMarketPrice":88.2,
		"trailingPE":5.6
	}],"error":null}}`
	server := quoteServer(t, body, http.StatusOK)
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	quote, err := client.GetQuote(context.Background(), "BMW.DE")
	require.NoError(t, err)

	require.NotNil(t, quote.Name)
	assert.Equal(t, "BMW", *quote.Name)
	require.NotNil(t, quote.Price)
	assert.Equal(t, 88.2, *quote.Price)
	require.NotNil(t, quote.PERatio)
	assert.Equal(t, 5.6, *quote.PERatio)
}

func TestGetQuoteAbsentFieldsNil(t *testing.T) {
	body := `{"quoteResponse":{"result":[{"symbol":"PRIVATE"}],"error":null}}`
	server := quoteServer(t, body, http.StatusOK)
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	quote, err := client.GetQuote(context.Background(), "PRIVATE")
	require.NoError(t, err)

	assert.Nil(t, quote.Name)
	assert.Nil(t, quote.Price)
	assert.Nil(t, quote.MarketCap)
	assert.Nil(t, quote.Sector)
	assert.Nil(t, quote.DividendYield)
}

func TestGetQuoteEmptyResult(t *testing.T) {
	body := `{"quoteResponse":{"result":[],"error":null}}`
	server := quoteServer(t, body, http.StatusOK)
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	_, err := client.GetQuote(context.Background(), "NOSUCH")
	assert.Error(t, err)
}

func TestGetQuoteAPIError(t *testing.T) {
	body := `{"quoteResponse":{"result":[],"error":{"code":"Bad Request"}}}`
	server := quoteServer(t, body, http.StatusOK)
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	_, err := client.GetQuote(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestGetQuoteHTTPError(t *testing.T) {
	server := quoteServer(t, "too many requests", http.StatusTooManyRequests)
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	_, err := client.GetQuote(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestGetQuoteContextCancelled(t *testing.T) {
	server := quoteServer(t, `{}`, http.StatusOK)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	_, err := client.GetQuote(ctx, "AAPL")
	assert.Error(t, err)
}
