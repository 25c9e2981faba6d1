package handlers

// @title Product Inventory API
// @version 1.0
// @description CRUD API over a key-value product inventory table, served from AWS Lambda behind API Gateway

// @contact.name API Support
// @contact.url https://github.com/devLucasOAK/lambda-serverless-api

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @tag.name health
// @tag.description Liveness checks

// @tag.name products
// @tag.description Product inventory operations
