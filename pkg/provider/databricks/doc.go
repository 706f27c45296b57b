// Package databricks implements the Provider interface for Databricks
// model serving endpoints, which speak the OpenAI Chat Completions
// protocol.
//
// Base resolves the endpoint URL, API key and display identity shared by
// every Databricks provider. ChatProvider embeds it and performs chat
// completions through a fetch.Fetcher, normalizing plain text, function
// call and tool call responses into api.InvocationResult.
//
// Configuration is layered. For the base URL: api_host, api_base_url,
// the construction-time environment override map, the process
// environment (DATABRICKS_BASE_URL), then DefaultBaseURL. For the API
// key: api_key, the variable named by api_key_envar, then
// DATABRICKS_TOKEN from the override map and the process environment.
package databricks
