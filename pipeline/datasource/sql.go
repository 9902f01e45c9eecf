/*
 *     Copyright 2023 The Modelpipe Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/VividCortex/mysqlerr"
	"github.com/docker/go-connections/tlsconfig"
	"github.com/go-sql-driver/mysql"
	drivermysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"moul.io/zapgorm2"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pkg/frame"
)

const (
	// defaultMysqlDialTimeout is dial timeout of mysql.
	defaultMysqlDialTimeout = 1 * time.Minute

	// defaultMysqlReadTimeout is I/O read timeout of mysql.
	defaultMysqlReadTimeout = 2 * time.Minute

	// defaultMysqlWriteTimeout is I/O write timeout of mysql.
	defaultMysqlWriteTimeout = 2 * time.Minute

	// mysqlTLSConfigName is the registered name of custom tls config.
	mysqlTLSConfigName = "modelpipe"
)

type sqlSource struct {
	sourceType string
	db         *gorm.DB
}

func newMysql(cfg *config.MysqlConfig, verbose bool) (DataSource, error) {
	// Format dsn string.
	dsn, err := formatMysqlDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(drivermysql.Open(dsn), newGormConfig(verbose))
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	return &sqlSource{config.SourceTypeMysql, db}, nil
}

func newPostgres(cfg *config.PostgresConfig, verbose bool) (DataSource, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  formatPostgresDSN(cfg),
		PreferSimpleProtocol: true,
	}), newGormConfig(verbose))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &sqlSource{config.SourceTypePostgres, db}, nil
}

func newGormConfig(verbose bool) *gorm.Config {
	// Initialize gorm logger.
	logLevel := gormlogger.Info
	if !verbose {
		logLevel = gormlogger.Warn
	}

	return &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger: zapgorm2.New(logger.CoreLogger.Desugar()).LogMode(logLevel),
	}
}

// Export returns all rows of the table.
func (s *sqlSource) Export(ctx context.Context, collection string) (*frame.Frame, error) {
	rows, err := s.db.WithContext(ctx).Table(collection).Rows()
	if err != nil {
		if isNoSuchTable(err) {
			return nil, fmt.Errorf("table %s: %w", collection, pipeerrors.ErrEmptyCollection)
		}

		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records [][]field
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		records = append(records, rowToRecord(columns, values))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.WithSource(s.sourceType, collection).Infof("exported %d rows", len(records))
	return newFrameWithColumns(columns, records), nil
}

// isNoSuchTable reports whether mysql rejected the query for a missing table.
func isNoSuchTable(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlerr.ER_NO_SUCH_TABLE
}

// Close closes the database connection pool.
func (s *sqlSource) Close(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

func rowToRecord(columns []string, values []sql.NullString) []field {
	record := make([]field, 0, len(columns))
	for i, column := range columns {
		var value any
		if values[i].Valid {
			value = values[i].String
		}

		record = append(record, field{key: column, value: value})
	}

	return record
}

// newFrameWithColumns keeps the table columns even when the table is empty.
func newFrameWithColumns(columns []string, records [][]field) *frame.Frame {
	if len(records) > 0 {
		return newFrame(records)
	}

	var kept []string
	for _, column := range columns {
		if column != IDField {
			kept = append(kept, column)
		}
	}

	return frame.New(kept, nil)
}

func formatMysqlDSN(cfg *config.MysqlConfig) (string, error) {
	mysqlCfg := mysql.Config{
		User:                 cfg.User,
		Passwd:               cfg.Password,
		Addr:                 fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Net:                  "tcp",
		DBName:               cfg.DBName,
		Loc:                  time.Local,
		AllowNativePasswords: true,
		ParseTime:            true,
		InterpolateParams:    true,
		Timeout:              defaultMysqlDialTimeout,
		ReadTimeout:          defaultMysqlReadTimeout,
		WriteTimeout:         defaultMysqlWriteTimeout,
	}

	// Support TLS connection.
	if cfg.TLS != nil {
		mysqlCfg.TLSConfig = mysqlTLSConfigName
		tls, err := tlsconfig.Client(tlsconfig.Options{
			CAFile:             cfg.TLS.CA,
			CertFile:           cfg.TLS.Cert,
			KeyFile:            cfg.TLS.Key,
			InsecureSkipVerify: cfg.TLS.InsecureSkipVerify,
		})
		if err != nil {
			return "", err
		}

		if err := mysql.RegisterTLSConfig(mysqlTLSConfigName, tls); err != nil {
			return "", err
		}
	}

	return mysqlCfg.FormatDSN(), nil
}

func formatPostgresDSN(cfg *config.PostgresConfig) string {
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=%v TimeZone=%v",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.Port,
		cfg.SSLMode,
		cfg.Timezone,
	)
}
