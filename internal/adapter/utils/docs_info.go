// @title           RAG Ingestion & Query API
// @version         1.0
// @description     Asynchronous document ingestion with two-stage retrieval queries.

// @host      localhost:3000
// @BasePath  /
// @schemes   http
package utils

//run redis
//docker run -p 6379:6379 -d redis

//run the cross-encoder service before querying

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
