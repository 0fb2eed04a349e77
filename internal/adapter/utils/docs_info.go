// @title           PDF Question Answering API
// @version         1.0
// @description     Upload documents with a question and poll for an answer grounded in their text.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package utils

//http api, jobs polled at /status/{id}
//go run ./cmd/api -config config.yaml -listen-addr :3000

//one-shot answer on the terminal
//go run ./cmd/ask -config config.yaml -q "What was the total revenue?" report.pdf notes.txt

//mcp tool server over stdio
//go run ./cmd/mcp -config config.yaml

//redis job store (only when redis.enabled, otherwise jobs stay in memory)
//docker run -p 6379:6379 -d redis

//qdrant (only when vector_store.backend is qdrant)
//docker run -p 6333:6333 -p 6334:6334 qdrant/qdrant

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
