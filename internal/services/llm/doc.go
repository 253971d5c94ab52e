// Package llm wraps the OpenRouter chat completion API used for movie
// mention extraction and reply composition. The client retries transient
// HTTP failures with capped exponential backoff, honors Retry-After, and
// tolerates the content/delta/tool-call response variants different
// providers emit.
package llm
