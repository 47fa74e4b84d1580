// Command server runs the Bitcoin OS shell backend.
//
// Configuration comes from the environment, optionally seeded from a
// dotenv file, with a few flags on top:
//
//	server --port 8000 --dev --env-file .env --apps-dir ./apps
package main
