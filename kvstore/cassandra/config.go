package cassandra

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/gocql/gocql"

	"github.com/MattiSG/url-frontier"
)

// ClusterConfigFrom builds a *gocql.ClusterConfig from cfg's cassandra
// section.
func ClusterConfigFrom(cfg frontier.FrontierConfig) (*gocql.ClusterConfig, error) {
	timeout, err := time.ParseDuration(cfg.Cassandra.Timeout)
	if err != nil {
		return nil, fmt.Errorf("cassandra: invalid timeout %q: %w", cfg.Cassandra.Timeout, err)
	}

	cluster := gocql.NewCluster(cfg.Cassandra.Hosts...)
	cluster.Keyspace = cfg.Cassandra.Keyspace
	cluster.Timeout = timeout
	cluster.Consistency = gocql.Quorum
	return cluster, nil
}

type schemaParams struct {
	Keyspace          string
	ReplicationFactor int
}

// renderSchema renders schemaTemplate for the given keyspace/RF.
func renderSchema(keyspace string, replicationFactor int) (string, error) {
	t, err := template.New("schema").Parse(schemaTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, schemaParams{Keyspace: keyspace, ReplicationFactor: replicationFactor}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CreateSchema creates the frontier keyspace and tables if they do not
// already exist.
func CreateSchema(cfg frontier.FrontierConfig) error {
	cluster, err := ClusterConfigFrom(cfg)
	if err != nil {
		return err
	}
	cluster.Keyspace = ""
	session, err := cluster.CreateSession()
	if err != nil {
		return fmt.Errorf("cassandra: could not connect to create schema: %w", err)
	}
	defer session.Close()

	schema, err := renderSchema(cfg.Cassandra.Keyspace, cfg.Cassandra.ReplicationFactor)
	if err != nil {
		return err
	}
	for _, stmt := range splitStatements(schema) {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("cassandra: failed to apply schema statement %q: %w", stmt, err)
		}
	}
	return nil
}

func splitStatements(schema string) []string {
	var out []string
	for _, stmt := range bytes.Split([]byte(schema), []byte(";")) {
		s := string(bytes.TrimSpace(stmt))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
