package utils

import (
	"fmt"
	"strings"
	"time"
)

// SendPostingSummaryEmail reports the outcome of a batch post to the user who
// started it. Long error lists are truncated for display.
func SendPostingSummaryEmail(to, firstName string, postedCount, failedCount int, errMessages []string) error {
	subject := fmt.Sprintf("📒 Ledger Posting Finished: %d posted, %d failed", postedCount, failedCount)

	const maxShown = 10
	shown := errMessages
	truncated := ""
	if len(shown) > maxShown {
		shown = shown[:maxShown]
		truncated = fmt.Sprintf("<p class=\"message\">…and %d more.</p>", len(errMessages)-maxShown)
	}

	var errList strings.Builder
	for _, m := range shown {
		errList.WriteString(fmt.Sprintf("<li>%s</li>", m))
	}

	errBlock := ""
	if len(shown) > 0 {
		errBlock = fmt.Sprintf(`<ul class="errors">%s</ul>%s`, errList.String(), truncated)
	}

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Posting Summary</title>
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
			border-top: 5px solid #0a4d3c;
		}
		.header {
			background-color: #0a4d3c;
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
		.counts {
			background: #f0f6f2;
			border-radius: 8px;
			padding: 12px 14px;
			margin: 16px 0;
			text-align: center;
			font-size: 15px;
		}
		.errors {
			font-size: 13px;
			color: #a33;
		}
		.footer {
			background: #f0f6f2;
			text-align: center;
			padding: 14px;
			font-size: 12px;
			color: #777;
			border-top: 1px solid #e5e5e5;
		}
		.brand {
			color: #0a4d3c;
			font-weight: bold;
		}
	</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>Batch Posting Summary</h1>
			</div>
			<div class="content">
				<p class="message">Hi %s,</p>
				<p class="message">Your batch posting run has finished.</p>
				<div class="counts">
					<b>%d posted</b> &middot; <b>%d failed</b>
				</div>
				%s
			</div>
			<div class="footer">
				&copy; %d <span class="brand">SiteBooks</span> — Back office for builders.
			</div>
		</div>
	</body>
	</html>
	`, firstName, postedCount, failedCount, errBlock, time.Now().Year())

	return SendEmail(to, subject, body)
}
