package ioconfig

import (
	"bytes"
	"strings"

	"github.com/gnames/gntaxdb/pkg/config"
	"gopkg.in/yaml.v3"
)

var comments = map[string]string{
	"database":                   "PostgreSQL connection.",
	"database.ssl_mode":          "disable, require, verify-ca or verify-full.",
	"database.batch_size":        "Rows read per chunk when streaming leaf collections.",
	"taxonomy":                   "Lineage authority and batching of taxonomy writes.",
	"taxonomy.source_url":        "ENA browser XML endpoint, taxids are sent as a comma-separated list.",
	"taxonomy.fetch_batch_size":  "Maximum number of taxids per request.",
	"taxonomy.insert_batch_size": "Organisms or taxa inserted at once. A failed insert discards the sub-batch.",
	"taxonomy.update_batch_size": "Point updates per batch during rebuild and aggregation.",
	"taxonomy.timeout_sec":       "A request that takes longer is treated as an empty batch.",
	"log":                        "format: json or text; level: debug, info, warn or error;\ndestination: file, stderr or stdout.",
	"jobs_number":                "Number of concurrent workers.",
	"metrics_file":               "Prometheus textfile written after every job, empty to disable.",
}

var header = "GNtaxdb configuration.\n" +
	"Every value can be overridden by an environment variable,\n" +
	"for example " + EnvVar("database.host") + "."

// Generate renders a documented config.yaml from the configuration.
func Generate(cfg *config.Config) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, GenerateConfigError(err)
	}
	comment(&doc, "")
	if len(doc.Content) > 0 {
		first := doc.Content[0]
		first.HeadComment = header + "\n" + first.HeadComment
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, GenerateConfigError(err)
	}
	if err := enc.Close(); err != nil {
		return nil, GenerateConfigError(err)
	}
	return buf.Bytes(), nil
}

func comment(n *yaml.Node, prefix string) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		path := k.Value
		if prefix != "" {
			path = prefix + "." + path
		}
		if c, ok := comments[path]; ok {
			k.HeadComment = strings.TrimSpace(c)
		}
		comment(v, path)
	}
}
