package infra

// billing.go — HTTP client for the external credit-billing gateway.
// The provider exposes customer and charge (cobrança) resources over REST
// with an access_token header. The client is synchronous and never retries:
// retry/abort policy belongs to the caller, which invokes it inside the
// sale transaction boundary.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"varejopos/internal/apperr"
	"varejopos/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	billingSandboxURL    = "https://sandbox.asaas.com/api/v3"
	billingProductionURL = "https://api.asaas.com/v3"

	billingTimeout = 10 * time.Second
)

// BillingBaseURL maps the configured environment to the provider base URL.
func BillingBaseURL(env string) string {
	if env == "production" {
		return billingProductionURL
	}
	return billingSandboxURL
}

// CobrancaRequest describes one installment charge to create.
type CobrancaRequest struct {
	VendaID          string
	ClienteExternoID string
	Valor            decimal.Decimal
	DiaVencimento    int
	Parcelas         int // <= 1 means single charge
	JurosMensal      decimal.Decimal
	Multa            decimal.Decimal
}

// CobrancaResult is the provider's handle for a created charge.
type CobrancaResult struct {
	ID         string
	LinkFatura string
}

// CobrancaClient talks to the billing provider. An optional circuit breaker
// fast-fails calls while the provider is known to be down; an open circuit
// surfaces as an external-service error like any other gateway failure.
type CobrancaClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewCobrancaClient(baseURL, apiKey string, cb *CircuitBreaker) *CobrancaClient {
	return &CobrancaClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: billingTimeout},
		cb:         cb,
	}
}

// ─── Wire types ──────────────────────────────────────────────────────────────

type gatewayCustomer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	CpfCnpj string `json:"cpfCnpj"`
	Email   string `json:"email,omitempty"`
}

type gatewayCustomerList struct {
	Data []gatewayCustomer `json:"data"`
}

type gatewayCharge struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoiceUrl"`
}

// ─── Operations ──────────────────────────────────────────────────────────────

// ResolverCliente returns the provider-side customer id for cliente. The
// cached id wins; otherwise the customer is looked up by tax id and created
// remotely when absent. Persisting the resolved id on the local record is
// the caller's job (it happens inside the sale transaction).
func (c *CobrancaClient) ResolverCliente(ctx context.Context, cliente *model.Cliente) (string, error) {
	if cliente.CpfCnpj == nil || *cliente.CpfCnpj == "" {
		return "", apperr.Validation("cliente %s não possui CPF/CNPJ para faturamento", cliente.Nome)
	}
	if cliente.DiaVencimento == nil {
		return "", apperr.Validation("cliente %s não possui dia de vencimento configurado", cliente.Nome)
	}
	if cliente.GatewayClienteID != nil && *cliente.GatewayClienteID != "" {
		return *cliente.GatewayClienteID, nil
	}

	var found string
	err := c.execute(func() error {
		var list gatewayCustomerList
		q := url.Values{"cpfCnpj": {*cliente.CpfCnpj}}
		if err := c.do(ctx, http.MethodGet, "/customers?"+q.Encode(), nil, &list); err != nil {
			return err
		}
		if len(list.Data) > 0 {
			found = list.Data[0].ID
			return nil
		}

		payload := gatewayCustomer{Name: cliente.Nome, CpfCnpj: *cliente.CpfCnpj}
		if cliente.Email != nil {
			payload.Email = *cliente.Email
		}
		var created gatewayCustomer
		if err := c.do(ctx, http.MethodPost, "/customers", payload, &created); err != nil {
			return err
		}
		found = created.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return found, nil
}

// CriarCobranca creates a (possibly installment) charge. The due date is the
// next occurrence of the customer's due day; amounts are split into equal
// installments when Parcelas > 1.
func (c *CobrancaClient) CriarCobranca(ctx context.Context, req CobrancaRequest) (*CobrancaResult, error) {
	vencimento := ProximoVencimento(time.Now(), req.DiaVencimento)

	body := map[string]interface{}{
		"customer":          req.ClienteExternoID,
		"billingType":       "BOLETO",
		"dueDate":           vencimento.Format("2006-01-02"),
		"externalReference": req.VendaID,
	}
	if req.Parcelas > 1 {
		parcela := req.Valor.DivRound(decimal.NewFromInt(int64(req.Parcelas)), 2)
		body["installmentCount"] = req.Parcelas
		body["installmentValue"] = parcela
	} else {
		body["value"] = req.Valor
	}
	if req.JurosMensal.IsPositive() {
		body["interest"] = map[string]interface{}{"value": req.JurosMensal}
	}
	if req.Multa.IsPositive() {
		body["fine"] = map[string]interface{}{"value": req.Multa}
	}

	var charge gatewayCharge
	err := c.execute(func() error {
		return c.do(ctx, http.MethodPost, "/payments", body, &charge)
	})
	if err != nil {
		return nil, err
	}
	return &CobrancaResult{ID: charge.ID, LinkFatura: charge.InvoiceURL}, nil
}

// CancelarCobranca is best-effort and idempotent: a 4xx from the provider
// means the charge is already settled or otherwise not cancellable, which is
// the expected outcome for paid charges — logged and treated as success.
func (c *CobrancaClient) CancelarCobranca(ctx context.Context, cobrancaID string) error {
	return c.execute(func() error {
		err := c.do(ctx, http.MethodDelete, "/payments/"+cobrancaID, nil, nil)
		if err == nil {
			return nil
		}
		if se, ok := err.(*statusError); ok && se.code >= 400 && se.code < 500 {
			log.Warn().
				Str("cobranca_id", cobrancaID).
				Int("status", se.code).
				Msg("cobrança não cancelável no gateway (provavelmente já liquidada)")
			return nil
		}
		return err
	})
}

// ─── Plumbing ────────────────────────────────────────────────────────────────

// statusError carries a non-2xx provider response before it is classified.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.code, e.body)
}

func (c *CobrancaClient) execute(fn func() error) error {
	call := fn
	if c.cb != nil {
		call = func() error { return c.cb.Execute(fn) }
	}
	err := call()
	if err == nil {
		return nil
	}
	if apperr.CodeOf(err) != "" {
		return err
	}
	return apperr.External(err, "falha na comunicação com o gateway de cobrança")
}

func (c *CobrancaClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("billing: marshal payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("billing: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("billing: decode response: %w", err)
		}
	}
	return nil
}

// ProximoVencimento returns the next occurrence of dia (day of month) after
// from: when from's day-of-month is >= dia, the due date rolls to the next
// month. dia is clamped to the target month's length.
func ProximoVencimento(from time.Time, dia int) time.Time {
	year, month := from.Year(), from.Month()
	if from.Day() >= dia {
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, from.Location()).Day()
	d := dia
	if d > last {
		d = last
	}
	return time.Date(year, month, d, 0, 0, 0, 0, from.Location())
}
