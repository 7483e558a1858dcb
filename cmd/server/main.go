package main

import (
	"log"
	"strings"

	"mutfak-backend/internal/admin"
	"mutfak-backend/internal/audit"
	"mutfak-backend/internal/auth"
	"mutfak-backend/internal/config"
	"mutfak-backend/internal/dashboard"
	"mutfak-backend/internal/database"
	"mutfak-backend/internal/expense"
	"mutfak-backend/internal/financial"
	"mutfak-backend/internal/integrations"
	"mutfak-backend/internal/inventory"
	"mutfak-backend/internal/invoice"
	"mutfak-backend/internal/jobs"
	"mutfak-backend/internal/models"
	"mutfak-backend/internal/production"
	"mutfak-backend/internal/recipe"
	"mutfak-backend/internal/sales"
	"mutfak-backend/internal/staff"
	"mutfak-backend/internal/tips"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	integrations.InitWebhooks(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// Panik durumunda ErrorHandler'a düş, istekleri logla
	app.Use(recover.New())
	app.Use(logger.New())

	// 🔥 CORS MIDDLEWARE
	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Şube yönetimi
	adminRoutes.Post("/branches", admin.CreateBranchHandler())
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Get("/branches/:id", admin.GetBranchHandler())
	adminRoutes.Put("/branches/:id", admin.UpdateBranchHandler())
	adminRoutes.Delete("/branches/:id", admin.DeleteBranchHandler())
	adminRoutes.Post("/branches/:id/admin", admin.CreateBranchAdminHandler())
	adminRoutes.Get("/branches/:id/admins", admin.ListBranchAdminsHandler())

	// Ürün kartları (master data, sadece super_admin değiştirir)
	adminRoutes.Post("/products", inventory.CreateProductHandler())
	adminRoutes.Put("/products/:id", inventory.UpdateProductHandler())
	adminRoutes.Delete("/products/:id", inventory.DeleteProductHandler())
	adminRoutes.Post("/products/:id/conversions", inventory.CreateConversionHandler())
	adminRoutes.Delete("/conversions/:id", inventory.DeleteConversionHandler())

	// Ürün kategorileri
	adminRoutes.Post("/product-categories", inventory.CreateProductCategoryHandler())
	adminRoutes.Put("/product-categories/:id", inventory.UpdateProductCategoryHandler())
	adminRoutes.Delete("/product-categories/:id", inventory.DeleteProductCategoryHandler())

	// Gider kategorileri
	adminRoutes.Post("/expense-categories", expense.CreateExpenseCategoryHandler())
	adminRoutes.Put("/expense-categories/:id", expense.UpdateExpenseCategoryHandler())
	adminRoutes.Delete("/expense-categories/:id", expense.DeleteExpenseCategoryHandler())

	// Aylık raporlama (ay kapanışı)
	adminRoutes.Post("/monthly-reports", admin.CreateMonthlyReportHandler())
	adminRoutes.Get("/monthly-reports", admin.ListMonthlyReportsHandler())
	adminRoutes.Get("/monthly-reports/:id", admin.GetMonthlyReportHandler())

	// Ortak (auth gerektiren) route'lar

	// Ürünler ve dönüşümler
	protected.Get("/products", inventory.ListProductsHandler())
	protected.Get("/products/:id", inventory.GetProductHandler())
	protected.Get("/products/:id/conversions", inventory.ListConversionsHandler())
	protected.Get("/product-categories", inventory.ListProductCategoriesHandler())

	// Stok hareketleri
	protected.Get("/stock-movements", inventory.ListStockMovementsHandler())
	protected.Get("/stock-movements/export", inventory.ExportMovementsHandler())
	protected.Post("/stock-movements/adjust", inventory.CreateAdjustmentHandler())
	protected.Delete("/stock-movements/:id", inventory.DeleteStockMovementHandler())

	// Stok sayımları
	protected.Post("/stock-counts", inventory.CreateStockCountHandler())
	protected.Get("/stock-counts", inventory.ListStockCountsHandler())
	protected.Put("/stock-counts/:id", inventory.UpdateStockCountHandler())
	protected.Delete("/stock-counts/:id", inventory.DeleteStockCountHandler())

	// Güncel stok, değerleme, kritik seviye
	protected.Get("/stock/current", inventory.GetCurrentStockHandler())
	protected.Get("/stock/valuation", inventory.StockValuationHandler())
	protected.Get("/stock/valuation/export", inventory.ExportValuationHandler())
	protected.Get("/stock/low", inventory.LowStockHandler())
	protected.Post("/stock/count-sheet/upload", inventory.UploadCountSheetOrderHandler())
	protected.Get("/stock/count-sheet/export", inventory.ExportCountSheetHandler())
	protected.Get("/stock-usage/monthly", inventory.GetMonthlyStockUsageHandler())
	protected.Get("/stock-usage/between-counts", inventory.GetStockUsageBetweenCountsHandler())

	// Zayiat girişleri
	protected.Post("/waste-entries", inventory.CreateWasteEntryHandler())
	protected.Get("/waste-entries", inventory.ListWasteEntriesHandler())
	protected.Get("/waste-entries/:id", inventory.GetWasteEntryHandler())
	protected.Delete("/waste-entries/:id", inventory.DeleteWasteEntryHandler())

	// Reçeteler
	protected.Post("/recipes", recipe.CreateRecipeHandler())
	protected.Get("/recipes", recipe.ListRecipesHandler())
	protected.Get("/recipes/:id", recipe.GetRecipeHandler())
	protected.Get("/recipes/:id/cost", recipe.CostRecipeHandler())
	protected.Put("/recipes/:id", recipe.UpdateRecipeHandler())
	protected.Delete("/recipes/:id", recipe.DeleteRecipeHandler())

	// Üretim
	protected.Post("/production-runs", production.CreateProductionRunHandler())
	protected.Get("/production-runs", production.ListProductionRunsHandler())
	protected.Get("/production-runs/:id", production.GetProductionRunHandler())
	protected.Post("/production-runs/:id/complete", production.CompleteProductionRunHandler())
	protected.Post("/production-runs/:id/cancel", production.CancelProductionRunHandler())
	protected.Delete("/production-runs/:id", production.DeleteProductionRunHandler())

	// Personel
	protected.Post("/employees", staff.CreateEmployeeHandler())
	protected.Get("/employees", staff.ListEmployeesHandler())
	protected.Put("/employees/:id", staff.UpdateEmployeeHandler())
	protected.Post("/employees/:id/pin", staff.SetEmployeePINHandler())
	protected.Delete("/employees/:id", staff.DeactivateEmployeeHandler())

	// Mesai (ortak terminal PIN ile)
	protected.Post("/time-clock/in", staff.ClockInHandler())
	protected.Post("/time-clock/out", staff.ClockOutHandler())
	protected.Get("/time-entries/summary", staff.LaborSummaryHandler())
	protected.Post("/time-entries", staff.CreateTimeEntryHandler())
	protected.Get("/time-entries", staff.ListTimeEntriesHandler())
	protected.Put("/time-entries/:id", staff.UpdateTimeEntryHandler())
	protected.Delete("/time-entries/:id", staff.DeleteTimeEntryHandler())

	// Bahşiş havuzları
	protected.Post("/tip-pools", tips.CreateTipPoolHandler())
	protected.Get("/tip-pools", tips.ListTipPoolsHandler())
	protected.Get("/tip-pools/:id", tips.GetTipPoolHandler())
	protected.Get("/tip-pools/:id/preview", tips.PreviewTipPoolHandler())
	protected.Get("/tip-pools/:id/export", tips.ExportTipPoolHandler())
	protected.Put("/tip-pools/:id", tips.UpdateTipPoolHandler())
	protected.Post("/tip-pools/:id/close", tips.CloseTipPoolHandler())
	protected.Delete("/tip-pools/:id", tips.DeleteTipPoolHandler())

	// Bahşiş ödemeleri
	protected.Get("/tip-payouts/balances", tips.TipBalancesHandler())
	protected.Post("/tip-payouts", tips.CreateTipPayoutHandler())
	protected.Get("/tip-payouts", tips.ListTipPayoutsHandler())
	protected.Delete("/tip-payouts/:id", tips.DeleteTipPayoutHandler())

	// Tedarikçiler
	protected.Get("/suppliers/balances", invoice.SupplierBalancesHandler())
	protected.Post("/suppliers", invoice.CreateSupplierHandler())
	protected.Get("/suppliers", invoice.ListSuppliersHandler())
	protected.Put("/suppliers/:id", invoice.UpdateSupplierHandler())
	protected.Delete("/suppliers/:id", invoice.DeleteSupplierHandler())

	// Faturalar
	protected.Get("/invoices/summary/monthly", invoice.MonthlyPurchaseSummaryHandler())
	protected.Post("/invoices", invoice.CreateInvoiceHandler())
	protected.Get("/invoices", invoice.ListInvoicesHandler())
	protected.Get("/invoices/:id", invoice.GetInvoiceHandler())
	protected.Put("/invoices/:id", invoice.UpdateInvoiceHandler())
	protected.Delete("/invoices/:id", invoice.DeleteInvoiceHandler())
	protected.Post("/invoices/:id/post", invoice.PostInvoiceHandler())

	// Tedarikçi ödemeleri
	protected.Post("/supplier-payments", invoice.CreateSupplierPaymentHandler())
	protected.Get("/supplier-payments", invoice.ListSupplierPaymentsHandler())
	protected.Delete("/supplier-payments/:id", invoice.DeleteSupplierPaymentHandler())

	// Satışlar
	protected.Get("/sales/summary", sales.RevenueSummaryHandler())
	protected.Get("/sales/tips-total", sales.DeclaredTipsTotalHandler())
	protected.Post("/sales", sales.CreateSalesRecordHandler())
	protected.Get("/sales", sales.ListSalesRecordsHandler())
	protected.Put("/sales/:id", sales.UpdateSalesRecordHandler())
	protected.Delete("/sales/:id", sales.DeleteSalesRecordHandler())

	// Giderler
	protected.Get("/expense-categories", expense.ListExpenseCategoriesHandler())
	protected.Get("/expenses/summary/monthly", expense.MonthlyExpenseSummaryHandler())
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler())
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler())
	protected.Post("/expense-payments", expense.CreateExpensePaymentHandler())
	protected.Get("/expense-payments", expense.ListExpensePaymentsHandler())
	protected.Delete("/expense-payments/:id", expense.DeleteExpensePaymentHandler())

	// Finansal özet ve dashboard
	protected.Get("/financial-summary/monthly", financial.MonthlyFinancialSummaryHandler())
	protected.Get("/dashboard/cost-chart", dashboard.CostChartHandler())

	// Webhooklar
	protected.Post("/webhooks", integrations.CreateWebhookHandler())
	protected.Get("/webhooks", integrations.ListWebhooksHandler())
	protected.Put("/webhooks/:id", integrations.UpdateWebhookHandler())
	protected.Delete("/webhooks/:id", integrations.DeleteWebhookHandler())
	protected.Get("/webhooks/:id/deliveries", integrations.ListWebhookDeliveriesHandler())
	protected.Post("/webhooks/:id/test", integrations.TestWebhookHandler())

	// POS eşleştirme ve içe aktarmalar
	protected.Post("/pos-item-maps", integrations.CreatePOSItemMapHandler())
	protected.Get("/pos-item-maps", integrations.ListPOSItemMapsHandler())
	protected.Put("/pos-item-maps/:id", integrations.UpdatePOSItemMapHandler())
	protected.Delete("/pos-item-maps/:id", integrations.DeletePOSItemMapHandler())
	protected.Post("/integrations/pos/import", integrations.ImportPOSSalesHandler())
	protected.Post("/integrations/catalog/import", integrations.ImportCatalogHandler(cfg))
	protected.Post("/integrations/invoices/parse-pdf", integrations.ParseInvoicePDFHandler())
	protected.Post("/integrations/invoices/parse-text", integrations.ParseInvoiceTextHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	// Zamanlanmış işler (stok fotoğrafı, kritik stok, webhook tekrar denemeleri)
	if _, err := jobs.Start(cfg); err != nil {
		log.Fatal(err)
	}

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
