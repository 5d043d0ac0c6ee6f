package utils

import (
	"fmt"
	"time"
)

// SendCodingRequestEmail notifies a user that a card transaction is waiting
// on them for coding.
func SendCodingRequestEmail(to, firstName, requestedBy, merchant, amount string, txnDate time.Time) error {
	subject := fmt.Sprintf("🧾 Coding Needed: %s — $%s", merchant, amount)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Coding Request</title>
	<style>
		body {
			font-family: 'Segoe UI', Roboto, Arial, sans-serif;
			background-color: #f6f7f8;
			margin: 0;
			padding: 0;
			color: #333;
		}
		.container {
			max-width: 480px;
			margin: 25px auto;
			background: #ffffff;
			border-radius: 12px;
			box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
			overflow: hidden;
			border-top: 5px solid #b8860b;
		}
		.header {
			background-color: #b8860b;
			color: #ffffff;
			text-align: center;
			padding: 18px 12px;
		}
		.header h1 {
			margin: 0;
			font-size: 18px;
			font-weight: 600;
		}
		.content {
			padding: 20px 18px;
		}
		.message {
			font-size: 14px;
			line-height: 1.6;
			color: #444;
		}
		.txn-box {
			background: #fdf8ec;
			border: 1px solid #e8d9a8;
			border-radius: 8px;
			padding: 12px 14px;
			margin: 16px 0;
			text-align: center;
			font-size: 15px;
		}
		.footer {
			background: #f4f1ea;
			text-align: center;
			padding: 14px;
			font-size: 12px;
			color: #777;
			border-top: 1px solid #e5e5e5;
		}
		.brand {
			color: #b8860b;
			font-weight: bold;
		}
	</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>Card Transaction Needs Coding</h1>
			</div>
			<div class="content">
				<p class="message">Hi %s,</p>
				<p class="message">
					%s has asked you to code a credit card transaction. Please add the
					vendor, job/cost code and receipt so it can be posted.
				</p>
				<div class="txn-box">
					<b>%s</b><br/>
					$%s on %s
				</div>
			</div>
			<div class="footer">
				&copy; %d <span class="brand">SiteBooks</span> — Back office for builders.
			</div>
		</div>
	</body>
	</html>
	`, firstName, requestedBy, merchant, amount, txnDate.Format("Jan 2, 2006"), time.Now().Year())

	return SendEmail(to, subject, body)
}
