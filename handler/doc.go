// Package handler provides the HTTP handlers of the payroute gateway.
//
// Handlers are thin: they decode the request, call the gateway and map the
// outcome to a status code. All payment logic lives in package provider.
//
// # Transaction Handler
//
//	transactionHandler := handler.NewTransactionHandler(gw, nil)
//
//	r.Post("/app/processTransaction/{provider}", transactionHandler.ProcessTransaction)
//	r.Post("/v1/transactions/{provider}", transactionHandler.ProcessTransaction)
//
// The body is a JSON object with amount, currency, card_number,
// card_exp_year, card_exp_month and card_cvv. Values may be strings or
// numbers.
//
// Successful payment (200):
//
//	{
//	  "data": {
//	    "transactionId": "char_txn123",
//	    "createdAt": "2024-05-14 09:21:07",
//	    "amount": 100.00,
//	    "currency": "USD",
//	    "cardBin": "424242"
//	  },
//	  "message": "Transaction processed successfully"
//	}
//
// Rejected input, unsupported provider or declined payment (400):
//
//	{"errors": ["Unsupported payment provider: paypal"]}
//
// Unexpected failures return 500 with {"errors": ["An unexpected error occurred."]}.
// A body that is not a JSON object returns 400 with "Invalid JSON payload".
//
// # Health Handler
//
// GET /health lists each provider with its configuration state and the
// state of the OpenSearch sink. Missing credentials degrade the status but
// keep the endpoint at 200.
package handler
