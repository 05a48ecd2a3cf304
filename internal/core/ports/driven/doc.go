// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ExtractionBackend: Obtains the full text of a document by one method
//   - TextLayerEngine: Decodes the embedded text of a document
//   - EntryRepository: Durable storage of the document text cache
//   - ContentNormaliser: Canonicalises text for matching
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be absent - the application degrades gracefully:
//
//   - Rasterizer and Recognizer: Without them, optical recognition is disabled.
//   - TextProcessor: Repair steps applied to extracted text. An empty chain is valid.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
