package locale

var labels = map[string]map[string]string{
	"en": {
		"dashboard":          "Dashboard",
		"inventory":          "Inventory",
		"purchases":          "Purchases",
		"sales":              "Sales",
		"accounting":         "Accounting",
		"aiAnalyst":          "AI Analyst",
		"settings":           "Settings",
		"execOverview":       "Executive Overview",
		"totalStockValue":    "Total Stock Value",
		"totalRevenue":       "Total Revenue",
		"totalExpenses":      "Total Purchases",
		"netCashFlow":        "Net Cash Flow",
		"recentSales":        "Recent Sales Trend",
		"inventoryValuation": "Inventory Valuation",
		"newPurchase":        "New Purchase",
		"recordSale":         "Record Sale",
		"newJournalEntry":    "New Journal Entry",
		"generalLedger":      "General Ledger",
		"accountBalances":    "Account Balances",
		"debit":              "Debit",
		"credit":             "Credit",
		"account":            "Account",
		"description":        "Description",
		"date":               "Date",
		"product":            "Product",
		"productName":        "Product Name",
		"sku":                "SKU",
		"quantity":           "Quantity",
		"unitCost":           "Unit Cost",
		"unitPrice":          "Unit Price",
		"avgCost":            "Avg. Cost",
		"totalValue":         "Total Value",
		"supplier":           "Supplier",
		"customer":           "Customer",
		"status":             "Status",
		"inStock":            "In Stock",
		"lowStock":           "Low Stock",
		"outOfStock":         "Out of Stock",
		"exportData":         "Export Data",
		"importData":         "Import Data",
		"currency":           "Currency",
		"language":           "Language",
		"noData":             "No data available",
	},
	"es": {
		"dashboard":          "Panel",
		"inventory":          "Inventario",
		"purchases":          "Compras",
		"sales":              "Ventas",
		"accounting":         "Contabilidad",
		"aiAnalyst":          "Analista IA",
		"settings":           "Configuración",
		"execOverview":       "Resumen Ejecutivo",
		"totalStockValue":    "Valor Total del Inventario",
		"totalRevenue":       "Ingresos Totales",
		"totalExpenses":      "Compras Totales",
		"netCashFlow":        "Flujo de Caja Neto",
		"recentSales":        "Tendencia de Ventas Recientes",
		"inventoryValuation": "Valoración del Inventario",
		"newPurchase":        "Nueva Compra",
		"recordSale":         "Registrar Venta",
		"newJournalEntry":    "Nuevo Asiento",
		"generalLedger":      "Libro Mayor",
		"accountBalances":    "Saldos de Cuentas",
		"debit":              "Debe",
		"credit":             "Haber",
		"account":            "Cuenta",
		"description":        "Descripción",
		"date":               "Fecha",
		"product":            "Producto",
		"productName":        "Nombre del Producto",
		"quantity":           "Cantidad",
		"unitCost":           "Costo Unitario",
		"unitPrice":          "Precio Unitario",
		"avgCost":            "Costo Prom.",
		"totalValue":         "Valor Total",
		"supplier":           "Proveedor",
		"customer":           "Cliente",
		"status":             "Estado",
		"inStock":            "En Stock",
		"lowStock":           "Stock Bajo",
		"outOfStock":         "Agotado",
		"exportData":         "Exportar Datos",
		"importData":         "Importar Datos",
		"currency":           "Moneda",
		"language":           "Idioma",
		"noData":             "No hay datos disponibles",
	},
	"fr": {
		"dashboard":          "Tableau de bord",
		"inventory":          "Inventaire",
		"purchases":          "Achats",
		"sales":              "Ventes",
		"accounting":         "Comptabilité",
		"aiAnalyst":          "Analyste IA",
		"settings":           "Paramètres",
		"execOverview":       "Vue d'ensemble",
		"totalStockValue":    "Valeur Totale du Stock",
		"totalRevenue":       "Chiffre d'Affaires",
		"totalExpenses":      "Achats Totaux",
		"netCashFlow":        "Flux de Trésorerie Net",
		"recentSales":        "Tendance des Ventes Récentes",
		"inventoryValuation": "Valorisation du Stock",
		"newPurchase":        "Nouvel Achat",
		"recordSale":         "Enregistrer une Vente",
		"newJournalEntry":    "Nouvelle Écriture",
		"generalLedger":      "Grand Livre",
		"accountBalances":    "Soldes des Comptes",
		"debit":              "Débit",
		"credit":             "Crédit",
		"account":            "Compte",
		"description":        "Libellé",
		"date":               "Date",
		"product":            "Produit",
		"productName":        "Nom du Produit",
		"quantity":           "Quantité",
		"unitCost":           "Coût Unitaire",
		"unitPrice":          "Prix Unitaire",
		"avgCost":            "Coût Moyen",
		"totalValue":         "Valeur Totale",
		"supplier":           "Fournisseur",
		"customer":           "Client",
		"status":             "Statut",
		"inStock":            "En Stock",
		"lowStock":           "Stock Faible",
		"outOfStock":         "Rupture de Stock",
		"exportData":         "Exporter les Données",
		"importData":         "Importer les Données",
		"currency":           "Devise",
		"language":           "Langue",
		"noData":             "Aucune donnée disponible",
	},
}
