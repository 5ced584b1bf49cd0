// Package lib provides a Go SDK for running herdops farm operation plans programmatically.
//
// This package allows applications to manage operation templates, assign them to
// animals as plans and drive the scheduled operations without shelling out to the
// herdops CLI binary.
//
// # Quick Start
//
// Create a client, define a protocol, assign it and complete its operations:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	tpl, _ := client.CreateTemplate(ctx, lib.CreateTemplateRequest{Name: "AI protocol", IsActive: true})
//	client.CreateStep(ctx, lib.CreateStepRequest{
//	    TemplateID:    tpl.ID,
//	    Name:          "Insemination",
//	    OperationType: lib.OperationTypeInsemination,
//	})
//	client.CreateStep(ctx, lib.CreateStepRequest{
//	    TemplateID:        tpl.ID,
//	    Name:              "Pregnancy test",
//	    OperationType:     lib.OperationTypePregnancyTest,
//	    DaysAfterPrevious: 30,
//	    SortOrder:         1,
//	})
//
//	a, _ := client.AssignPlan(ctx, lib.AssignRequest{
//	    TemplateID: tpl.ID,
//	    AnimalID:   "cow-1",
//	    StartDate:  client.Today(),
//	})
//	res, _ := client.CompleteOperation(ctx, lib.CompleteRequest{OperationID: a.Operation.ID})
//	fmt.Println(res.Outcome, res.Next.ScheduledDate)
//
// # Advancement
//
// Completing an operation selects the next step whose condition accepts the
// recorded result (ALWAYS, POSITIVE or NEGATIVE), scanning forward in step order.
// The new operation is scheduled "days after previous" days after the completion
// day. When no step is eligible the plan is completed. A plan never has more than
// one outstanding operation.
//
// # Side effects
//
// Steps can change the animal status and group when their operation completes.
// Changes go to the [AnimalRegistry]: by default an animals table in the same
// database, or any implementation passed in [Config].Registry. Failed changes
// never fail the completion, they are returned as warnings and can be retried
// with [Client.RetrySideEffects].
//
// # Backends
//
//   - [BackendSQLite]: local database file (default).
//   - [BackendPostgres]: shared PostgreSQL database.
//   - [BackendMemory]: in-memory, for tests and dry runs.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Resource does not exist.
//   - [ErrAlreadyExists]: Resource with the same ID already exists.
//   - [ErrNotValid]: Invalid input (e.g. assigning a template without steps).
//   - [ErrConflict]: State transition collision (e.g. completing an operation twice).
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. Writes of the
// same plan are serialized.
package lib
