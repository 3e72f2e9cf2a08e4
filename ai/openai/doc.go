// Package openai provides AI service implementations using OpenAI-compatible
// APIs via langchaingo. It works with OpenAI itself as well as local servers
// that speak the same protocol (Ollama, LocalAI, vLLM).
package openai
