/*
Package registry maps resource types to export content type labels.

The top-level exporter reads a node's resource type property and, when
the type is registered, writes its label as ugcExport:contentType so an
importer knows which kind of content the record holds:

	registry.RegisterContentType("social/blog/components/hbs/journal", "blog")

	label, ok := registry.ContentType("social/forum/components/hbs/forum")
	// label == "forum"

Forum and QnA forum resource types are registered by default. The
registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
