package handlers

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mygads/genfity-order-main-sub002/internal/export"
	"github.com/mygads/genfity-order-main-sub002/internal/listview"
	"github.com/mygads/genfity-order-main-sub002/internal/money"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

// BalanceGet serves the balance card. The same snapshot feeds the websocket
// push; the HTTP read goes through the shared cache so a dashboard with both
// open does not double-poll the platform.
func (h *Handler) BalanceGet(w http.ResponseWriter, r *http.Request) {
	var balance upstream.Balance
	if err := h.Queries.Get(r.Context(), "/api/merchant/balance", authToken(r), &balance); err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, map[string]any{
		"balance":         balance.Balance,
		"display":         money.Format(balance.Balance, balance.Currency),
		"currency":        balance.Currency,
		"lastTopupAt":     balance.LastTopupAt,
		"isLow":           balance.IsLow,
		"orderFee":        balance.OrderFee,
		"estimatedOrders": balance.EstimatedOrders,
	})
}

// TransactionsList pages the balance ledger. Type and date filters are
// forwarded upstream; the free-text search filters the fetched page only.
func (h *Handler) TransactionsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := listview.ParseParamsWithReset(r.URL.Query(), "type")

	var page upstream.TransactionsPage
	if err := h.Queries.Get(ctx, "/api/merchant/balance/transactions?"+transactionsQuery(r.URL.Query(), params), authToken(r), &page); err != nil {
		writeUpstreamError(w, err)
		return
	}

	transactions := listview.Apply(page.Transactions,
		func(tx upstream.Transaction) []string {
			return []string{tx.Description, tx.Type}
		},
		func(tx upstream.Transaction) map[string]string {
			return map[string]string{}
		},
		listview.Params{Search: params.Search},
	)

	response.Success(w, map[string]any{
		"transactions": transactions,
		"pagination": listview.Page{
			Total:   page.Pagination.Total,
			Limit:   page.Pagination.Limit,
			Offset:  page.Pagination.Offset,
			HasMore: page.Pagination.HasMore,
		},
		"searchScope": "page",
	})
}

// TransactionsExport streams the platform's export file through to the
// browser, keeping the suggested filename when the platform sends one.
func (h *Handler) TransactionsExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := listview.ParseParamsWithReset(r.URL.Query(), "type")

	resp, err := h.Upstream.Download(ctx, "/api/merchant/balance/transactions/export?"+transactionsQuery(r.URL.Query(), params), authToken(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	defer resp.Body.Close()

	filename := export.FilenameFromHeader(resp.Header.Get("Content-Disposition"), export.DefaultFilename("transactions", "csv"))
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.Logger.Warn("transactions export stream interrupted", zapError(err))
	}
}

// TransactionsExportCSV builds the CSV locally from the fetched page, for
// deployments where the platform's export endpoint is unavailable.
func (h *Handler) TransactionsExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := listview.ParseParamsWithReset(r.URL.Query(), "type")

	var page upstream.TransactionsPage
	if err := h.Queries.Get(ctx, "/api/merchant/balance/transactions?"+transactionsQuery(r.URL.Query(), params), authToken(r), &page); err != nil {
		writeUpstreamError(w, err)
		return
	}

	data, err := export.TransactionsCSV(page.Transactions)
	if err != nil {
		h.Logger.Error("transactions csv build failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate export")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultFilename("transactions", "csv")+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// TransactionsExportPDF renders a statement locally instead of proxying,
// for merchants who want a printable document.
func (h *Handler) TransactionsExportPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := authToken(r)
	params := listview.ParseParamsWithReset(r.URL.Query(), "type")

	var page upstream.TransactionsPage
	if err := h.Queries.Get(ctx, "/api/merchant/balance/transactions?"+transactionsQuery(r.URL.Query(), params), token, &page); err != nil {
		writeUpstreamError(w, err)
		return
	}

	var balance upstream.Balance
	currency := "IDR"
	merchantName := ""
	if err := h.Queries.Get(ctx, "/api/merchant/balance", token, &balance); err == nil && balance.Currency != "" {
		currency = balance.Currency
	}
	var profile upstream.Profile
	if err := h.Queries.Get(ctx, "/api/merchant/profile", token, &profile); err == nil {
		merchantName = profile.Name
	}

	data, err := export.TransactionsPDF(merchantName, currency, page.Transactions)
	if err != nil {
		h.Logger.Error("transactions pdf build failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate statement")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultFilename("statement", "pdf")+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// transactionsQuery rebuilds the upstream query string from the page
// filters. The free-text search stays local, so it is not forwarded.
func transactionsQuery(raw url.Values, params listview.Params) string {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(params.Limit))
	query.Set("offset", strconv.Itoa(params.Offset))
	if value, ok := params.Filters["type"]; ok {
		query.Set("type", value)
	}
	for _, key := range []string{"startDate", "endDate"} {
		if value := strings.TrimSpace(raw.Get(key)); value != "" {
			query.Set(key, value)
		}
	}
	return query.Encode()
}
