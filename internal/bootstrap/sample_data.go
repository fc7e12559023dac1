package bootstrap

import (
	"context"
	"log"

	"github.com/lqor/igorforce/internal/application/services"
)

// InitializeSampleData seeds a handful of demo records. Runs only when the
// standard objects exist and Account has no records yet.
func InitializeSampleData(svc *services.ServiceManager) error {
	ctx := context.Background()

	account, err := svc.Catalog.GetObjectByName(ctx, "Account")
	if err != nil {
		return err
	}
	contact, err := svc.Catalog.GetObjectByName(ctx, "Contact")
	if err != nil {
		return err
	}
	opportunity, err := svc.Catalog.GetObjectByName(ctx, "Opportunity")
	if err != nil {
		return err
	}

	existing, err := svc.Records.ListRecordsByObject(ctx, account.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	acme, err := svc.Records.CreateRecord(ctx, account.ID, map[string]any{
		"Name": "Acme Corporation", "Industry": "Technology", "Phone": "(415) 555-1234",
		"Website": "https://acme.example.com", "Type": "Customer - Direct",
		"AnnualRevenue": "5000000", "BillingCity": "San Francisco", "BillingState": "CA",
	})
	if err != nil {
		return err
	}
	globex, err := svc.Records.CreateRecord(ctx, account.ID, map[string]any{
		"Name": "Globex Industries", "Industry": "Manufacturing", "Phone": "(212) 555-5678",
		"Website": "https://globex.example.com", "Type": "Prospect",
		"AnnualRevenue": "12000000", "BillingCity": "New York", "BillingState": "NY",
	})
	if err != nil {
		return err
	}
	initech, err := svc.Records.CreateRecord(ctx, account.ID, map[string]any{
		"Name": "Initech", "Industry": "Consulting", "Phone": "(512) 555-9012",
		"Type": "Customer - Channel", "AnnualRevenue": "800000",
		"BillingCity": "Austin", "BillingState": "TX",
	})
	if err != nil {
		return err
	}

	contacts := []map[string]any{
		{
			"FirstName": "John", "LastName": "Smith", "Email": "jsmith@acme.example.com",
			"Phone": "(415) 555-1111", "Title": "CEO", "AccountId": acme.ID,
			"MailingCity": "San Francisco", "MailingState": "CA",
		},
		{
			"FirstName": "Sarah", "LastName": "Johnson", "Email": "sjohnson@globex.example.com",
			"Phone": "(212) 555-2222", "Title": "VP of Sales", "AccountId": globex.ID,
			"MailingCity": "New York", "MailingState": "NY",
		},
		{
			"FirstName": "Mike", "LastName": "Davis", "Email": "mdavis@initech.example.com",
			"Phone": "(512) 555-3333", "Title": "CTO", "AccountId": initech.ID,
		},
	}
	for _, data := range contacts {
		if _, err := svc.Records.CreateRecord(ctx, contact.ID, data); err != nil {
			return err
		}
	}

	opportunities := []map[string]any{
		{
			"Name": "Acme - Enterprise License", "Amount": "150000", "CloseDate": "2026-03-31",
			"StageName": "Negotiation/Review", "AccountId": acme.ID, "Probability": "80",
		},
		{
			"Name": "Globex - Platform Migration", "Amount": "500000", "CloseDate": "2026-06-30",
			"StageName": "Proposal/Price Quote", "AccountId": globex.ID, "Probability": "50",
		},
		{
			"Name": "Initech - Consulting Package", "Amount": "75000", "CloseDate": "2026-04-15",
			"StageName": "Qualification", "AccountId": initech.ID, "Probability": "25",
		},
	}
	for _, data := range opportunities {
		if _, err := svc.Records.CreateRecord(ctx, opportunity.ID, data); err != nil {
			return err
		}
	}

	log.Println("Sample records seeded")
	return nil
}
