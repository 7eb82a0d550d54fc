package handlers

import (
	"fmt"
	"net/http"

	"ss-uniforms/internal/inventory"
	"ss-uniforms/internal/lowstock"
	"ss-uniforms/internal/middleware"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// --- GET: /api/admin/dashboard ---
// Stock value, counts, calendar revenue windows, best sellers and low stock items.
func (h *Handler) Dashboard(c *gin.Context) {
	snap := h.Inventory.Snapshot()
	respond(c, http.StatusOK, gin.H{
		"stats":           snap.Stats,
		"analytics":       snap.Analytics,
		"best_sellers":    snap.BestSellers,
		"low_stock_items": snap.LowStockItems,
		"loading":         h.Inventory.Loading(),
	})
}

// --- POST: /api/sales ---
// Records a sale from explicit lines, for staff checkouts that bypass the cart.
func (h *Handler) RecordSale(c *gin.Context) {
	var input inventory.SaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid sale")
		return
	}
	id, err := h.Inventory.AddSale(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		storeError(c, err, "Failed to record sale")
		return
	}
	respond(c, http.StatusCreated, gin.H{"sale_id": id})
}

// employeeNames maps profile ids to names for sales listings.
func (h *Handler) employeeNames(c *gin.Context) map[string]string {
	names := map[string]string{}
	employees, err := h.Accounts.ListEmployees(c.Request.Context())
	if err != nil {
		log.WithError(err).Warn("Could not load employee names for sales report")
		return names
	}
	for _, e := range employees {
		names[e.ID] = e.Name
	}
	return names
}

func (h *Handler) filteredSales(c *gin.Context) (inventory.SalesFilter, bool) {
	var f inventory.SalesFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, "Invalid sales filter")
		return f, false
	}
	return f, true
}

// --- GET: /api/admin/sales?search=&period=&employee= ---
func (h *Handler) SalesReport(c *gin.Context) {
	f, ok := h.filteredSales(c)
	if !ok {
		return
	}
	all := h.Inventory.Sales()
	sales := inventory.FilterSales(all, f, h.Inventory.Now())
	respond(c, http.StatusOK, gin.H{
		"sales":     sales,
		"summary":   inventory.SummarizeSales(sales),
		"employees": inventory.Employees(all),
		"names":     h.employeeNames(c),
	})
}

// --- GET: /api/admin/sales/export ---
func (h *Handler) ExportSales(c *gin.Context) {
	f, ok := h.filteredSales(c)
	if !ok {
		return
	}
	sales := inventory.FilterSales(h.Inventory.Sales(), f, h.Inventory.Now())
	buf, err := inventory.ExportSales(sales, h.employeeNames(c))
	if err != nil {
		log.WithError(err).Error("Sales export failed")
		fail(c, http.StatusInternalServerError, "Failed to export sales")
		return
	}
	name := fmt.Sprintf("sales-%s.xlsx", h.Inventory.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) lowStockRows(c *gin.Context) ([]lowstock.Row, bool) {
	var f lowstock.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, "Invalid low stock filter")
		return nil, false
	}
	rows := lowstock.Build(h.Inventory.Catalogues(), h.Config.LowStockThreshold)
	return lowstock.Apply(rows, f), true
}

// --- GET: /api/admin/low-stock?catalogue=&size=&search= ---
func (h *Handler) LowStock(c *gin.Context) {
	all := lowstock.Build(h.Inventory.Catalogues(), h.Config.LowStockThreshold)
	rows, ok := h.lowStockRows(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, gin.H{
		"threshold": h.Config.LowStockThreshold,
		"rows":      rows,
		"summary":   lowstock.Summarize(rows),
		"sizes":     lowstock.Sizes(all),
	})
}

// --- GET: /api/admin/low-stock/export ---
func (h *Handler) ExportLowStock(c *gin.Context) {
	rows, ok := h.lowStockRows(c)
	if !ok {
		return
	}
	buf, err := lowstock.Export(rows)
	if err != nil {
		log.WithError(err).Error("Low stock export failed")
		fail(c, http.StatusInternalServerError, "Failed to export low stock report")
		return
	}
	name := fmt.Sprintf("low-stock-%s.xlsx", h.Inventory.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
