package i18n

// Dictionary maps message keys to templates. Templates use {name}
// placeholders.
type Dictionary map[string]string

var english = Dictionary{
	"app_title":                 "Money Tracker",
	"header_title":              "Money Tracker",
	"theme_toggle_title":        "Toggle theme",
	"select_currency":           "Select your currency",
	"currency_placeholder":      "Currency",
	"currency_title":            "Enter ISO currency code (e.g., USD, EUR, INR)",
	"export_json":               "Export JSON",
	"import_json":               "Import JSON",
	"seed_sample":               "Seed Sample",
	"reset":                     "Reset",
	"income":                    "Income",
	"expenses":                  "Expenses",
	"balance":                   "Balance",
	"add_transaction":           "Add Transaction",
	"amount":                    "Amount",
	"category":                  "Category",
	"note_optional":             "Note (optional)",
	"add":                       "Add",
	"filter_all":                "All",
	"date_col":                  "Date",
	"type_col":                  "Type",
	"category_col":              "Category",
	"note_col":                  "Note",
	"amount_col":                "Amount",
	"actions_col":               "Actions",
	"prev":                      "Prev",
	"next":                      "Next",
	"monthly_income_vs_expense": "Monthly Income vs Expense",
	"expense_by_category":       "Expense by Category",
	"edit":                      "Edit",
	"delete":                    "Delete",
	"other":                     "Other",
	"tx_count_one":              "1 transaction",
	"tx_count_other":            "{count} transactions",
	"confirm_clear":             "Are you sure you want to clear all transactions?",
	"invalid_currency":          "Invalid currency code",
	"search_note":               "Search note",
}

var french = Dictionary{
	"app_title":                 "Suivi des finances",
	"header_title":              "Suivi des finances",
	"theme_toggle_title":        "Changer le thème",
	"select_currency":           "Choisissez votre devise",
	"currency_placeholder":      "Devise",
	"currency_title":            "Entrez un code devise ISO (ex : USD, EUR, INR)",
	"export_json":               "Exporter JSON",
	"import_json":               "Importer JSON",
	"seed_sample":               "Générer un exemple",
	"reset":                     "Réinitialiser",
	"income":                    "Revenus",
	"expenses":                  "Dépenses",
	"balance":                   "Solde",
	"add_transaction":           "Ajouter une transaction",
	"amount":                    "Montant",
	"category":                  "Catégorie",
	"note_optional":             "Note (optionnel)",
	"add":                       "Ajouter",
	"filter_all":                "Tout",
	"date_col":                  "Date",
	"type_col":                  "Type",
	"category_col":              "Catégorie",
	"note_col":                  "Note",
	"amount_col":                "Montant",
	"actions_col":               "Actions",
	"prev":                      "Précédent",
	"next":                      "Suivant",
	"monthly_income_vs_expense": "Revenus vs Dépenses mensuels",
	"expense_by_category":       "Dépenses par catégorie",
	"edit":                      "Modifier",
	"delete":                    "Supprimer",
	"other":                     "Autre",
	"tx_count_one":              "1 transaction",
	"tx_count_other":            "{count} transactions",
	"confirm_clear":             "Voulez-vous vraiment tout effacer ?",
	"invalid_currency":          "Code devise invalide",
	"search_note":               "Rechercher une note",
}
