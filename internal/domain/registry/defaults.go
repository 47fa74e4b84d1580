package registry

// Defaults returns the built-in app catalog in dock order.
func Defaults() []AppDescriptor {
	return []AppDescriptor{
		{ID: "wallet", Name: "Bitcoin Wallet", Icon: "wallet", Color: "#f7931a", Category: "finance",
			URL: "https://bitcoin-wallet.vercel.app", DevPort: 1050, Pinned: true},
		{ID: "email", Name: "Bitcoin Email", Icon: "mail", Color: "#ef4444", Category: "communication",
			URL: "https://bitcoin-email.vercel.app", DevPort: 1040, Pinned: true},
		{ID: "drive", Name: "Bitcoin Drive", Icon: "hard-drive", Color: "#22c55e", Category: "storage",
			URL: "https://bitcoin-drive.vercel.app", DevPort: 4003, Pinned: true},
		{ID: "music", Name: "Bitcoin Music", Icon: "music", Color: "#8b5cf6", Category: "media",
			URL: "https://bitcoin-music.vercel.app", DevPort: 1000, Pinned: true},
		{ID: "writer", Name: "Bitcoin Writer", Icon: "file-text", Color: "#3b82f6", Category: "productivity",
			URL: "https://bitcoin-writer.vercel.app", DevPort: 2010, Pinned: true},
		{ID: "jobs", Name: "Bitcoin Jobs", Icon: "briefcase", Color: "#0ea5e9", Category: "work",
			URL: "https://bitcoin-jobs.vercel.app", DevPort: 3010},
		{ID: "spreadsheets", Name: "Bitcoin Spreadsheets", Icon: "table", Color: "#10b981", Category: "productivity",
			URL: "https://bitcoin-spreadsheet.vercel.app", DevPort: 3005, Pinned: true},
		{ID: "marketing", Name: "Bitcoin Marketing", Icon: "megaphone", Color: "#ec4899", Category: "work",
			URL: "https://bitcoin-marketing.vercel.app", DevPort: 3020},
		{ID: "exchange", Name: "Bitcoin Exchange", Icon: "repeat", Color: "#eab308", Category: "finance",
			URL: "https://bitcoin-exchange.vercel.app", DevPort: 3030},
		{ID: "search", Name: "Bitcoin Search", Icon: "search", Color: "#64748b", Category: "utilities",
			URL: "https://bitcoin-search.vercel.app", DevPort: 3040},
		{ID: "handcash", Name: "HandCash", Icon: "hand-coins", Color: "#38cb7c", Category: "finance",
			URL: "https://app.handcash.io", IsExternal: true},
		{ID: "docs", Name: "Google Docs", Icon: "file", Color: "#4285f4", Category: "productivity",
			URL: "https://docs.google.com", IsExternal: true, ChromeAppID: "aohghmighlieiainnegkcijnfilokake"},
	}
}
