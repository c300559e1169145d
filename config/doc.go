/*
Package config loads exporter configuration.

A configuration file is YAML:

	logLevel: info
	logFile:
	    filename: /var/log/ugcexport.log   # empty logs to stderr
	    maxSize: 10                        # megabytes before rotation
	    maxBackups: 10
	    maxAge: 30                         # days
	metrics:
	    textfile: /var/lib/node_exporter/ugcexport.prom
	export:
	    chunkSize: 1440         # bytes per base64 block, multiple of 3
	    maxDepth: 0             # 0 for unbounded
	    namespace: "ugcExport:"
	    excludedChildren: [attachments]
	dynamodb:
	    region: us-east-1
	    table: ugc
	    pageSize: 100
	    maxRetries: 3           # 0 disables retries, omit for the default
	    retryBackoff: 1s
	    timestampAttributes: [jcr:created, jcr:lastModified]

After the file, a .env file is read with godotenv and the environment is
applied on top: AWS_ACCESS_KEY, AWS_SECRET_KEY, AWS_REGION, AWS_DDB_TABLE,
UGCEXPORT_CHUNK_SIZE, UGCEXPORT_LOG_LEVEL, UGCEXPORT_LOG_FILE and
UGCEXPORT_METRICS_TEXTFILE.
*/
package config
