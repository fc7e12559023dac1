// Package bootstrap provisions the catalog and system data a fresh
// installation needs before serving requests.
package bootstrap

import (
	"context"
	"database/sql"
	"log"

	"github.com/lqor/igorforce/internal/domain/models"
	"github.com/lqor/igorforce/internal/infrastructure/database"
	"github.com/lqor/igorforce/internal/infrastructure/persistence"
	"github.com/lqor/igorforce/pkg/constants"
	"github.com/lqor/igorforce/pkg/utils"
)

type seedField struct {
	Name           string
	Label          string
	Type           constants.FieldType
	Required       bool
	IsNameField    bool
	PicklistValues []string
	LookupObject   string
}

type seedObject struct {
	Name        string
	Label       string
	PluralLabel string
	Icon        string
	Fields      []seedField
}

// Standard objects keep their literal API names; no custom suffix is
// applied and isCustom stays false on the object and every field.
var standardObjects = []seedObject{
	{
		Name: "Account", Label: "Account", PluralLabel: "Accounts", Icon: "Building2",
		Fields: []seedField{
			{Name: "Name", Label: "Name", Type: constants.FieldTypeText, Required: true, IsNameField: true},
			{Name: "Industry", Label: "Industry", Type: constants.FieldTypePicklist, PicklistValues: []string{
				"Agriculture", "Apparel", "Banking", "Biotechnology", "Chemicals", "Communications",
				"Construction", "Consulting", "Education", "Electronics", "Energy", "Engineering",
				"Entertainment", "Environmental", "Finance", "Food & Beverage", "Government",
				"Healthcare", "Hospitality", "Insurance", "Machinery", "Manufacturing", "Media",
				"Not For Profit", "Recreation", "Retail", "Shipping", "Technology",
				"Telecommunications", "Transportation", "Utilities", "Other",
			}},
			{Name: "Phone", Label: "Phone", Type: constants.FieldTypePhone},
			{Name: "Website", Label: "Website", Type: constants.FieldTypeURL},
			{Name: "Description", Label: "Description", Type: constants.FieldTypeTextArea},
			{Name: "BillingCity", Label: "Billing City", Type: constants.FieldTypeText},
			{Name: "BillingState", Label: "Billing State", Type: constants.FieldTypeText},
			{Name: "Type", Label: "Type", Type: constants.FieldTypePicklist, PicklistValues: []string{
				"Prospect", "Customer - Direct", "Customer - Channel",
				"Channel Partner / Reseller", "Installation Partner", "Technology Partner", "Other",
			}},
			{Name: "AnnualRevenue", Label: "Annual Revenue", Type: constants.FieldTypeCurrency},
		},
	},
	{
		Name: "Contact", Label: "Contact", PluralLabel: "Contacts", Icon: "User",
		Fields: []seedField{
			{Name: "FirstName", Label: "First Name", Type: constants.FieldTypeText},
			{Name: "LastName", Label: "Last Name", Type: constants.FieldTypeText, Required: true, IsNameField: true},
			{Name: "Email", Label: "Email", Type: constants.FieldTypeEmail},
			{Name: "Phone", Label: "Phone", Type: constants.FieldTypePhone},
			{Name: "Title", Label: "Title", Type: constants.FieldTypeText},
			{Name: "AccountId", Label: "Account", Type: constants.FieldTypeLookup, LookupObject: "Account"},
			{Name: "MailingCity", Label: "Mailing City", Type: constants.FieldTypeText},
			{Name: "MailingState", Label: "Mailing State", Type: constants.FieldTypeText},
		},
	},
	{
		Name: "Opportunity", Label: "Opportunity", PluralLabel: "Opportunities", Icon: "DollarSign",
		Fields: []seedField{
			{Name: "Name", Label: "Opportunity Name", Type: constants.FieldTypeText, Required: true, IsNameField: true},
			{Name: "Amount", Label: "Amount", Type: constants.FieldTypeCurrency},
			{Name: "CloseDate", Label: "Close Date", Type: constants.FieldTypeDate, Required: true},
			{Name: "StageName", Label: "Stage", Type: constants.FieldTypePicklist, Required: true, PicklistValues: []string{
				"Prospecting", "Qualification", "Needs Analysis", "Value Proposition",
				"Id. Decision Makers", "Perception Analysis", "Proposal/Price Quote",
				"Negotiation/Review", "Closed Won", "Closed Lost",
			}},
			{Name: "AccountId", Label: "Account", Type: constants.FieldTypeLookup, LookupObject: "Account"},
			{Name: "Probability", Label: "Probability (%)", Type: constants.FieldTypeNumber},
		},
	},
}

// InitializeStandardObjects seeds the Account, Contact and Opportunity
// schemas. Idempotent: if Account already exists the whole seed is skipped.
func InitializeStandardObjects(conn *database.Connection) error {
	ctx := context.Background()
	objects := persistence.NewObjectRepository()
	fields := persistence.NewFieldRepository()
	tm := persistence.NewTransactionManager(conn)

	existing, err := objects.GetByName(ctx, conn.DB(), "Account")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	err = tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, seed := range standardObjects {
			obj := &models.Object{
				ID:          utils.GenerateID(),
				Name:        seed.Name,
				Label:       seed.Label,
				PluralLabel: seed.PluralLabel,
				IsCustom:    false,
				Icon:        seed.Icon,
			}
			if err := objects.Insert(ctx, tx, obj); err != nil {
				return err
			}
			for i, sf := range seed.Fields {
				field := &models.Field{
					ID:             utils.GenerateID(),
					ObjectID:       obj.ID,
					APIName:        sf.Name,
					Label:          sf.Label,
					Type:           sf.Type,
					Required:       sf.Required,
					PicklistValues: sf.PicklistValues,
					IsNameField:    sf.IsNameField,
					IsCustom:       false,
					SortOrder:      i,
				}
				if sf.LookupObject != "" {
					lookup := sf.LookupObject
					field.LookupObject = &lookup
				}
				if err := fields.Insert(ctx, tx, field); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("Standard objects seeded: Account, Contact, Opportunity")
	return nil
}
