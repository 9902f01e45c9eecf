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

package dependency

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/mitchellh/mapstructure"
	"github.com/phayes/freeport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"

	"modelpipe.io/modelpipe/cmd/dependency/base"
	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/pkg/workpath"
)

const (
	// envPrefix is the prefix of configuration environment variables.
	envPrefix = "modelpipe"

	// configName is the file name of configuration without extension.
	configName = "pipeline"

	// tracerShutdownTimeout bounds flushing of buffered spans.
	tracerShutdownTimeout = 5 * time.Second
)

// envBindings maps configuration keys to the well-known environment variables.
var envBindings = map[string]string{
	"source.mongo.url":        "MONGODB_URL",
	"objectstorage.accesskey": "AWS_ACCESS_KEY_ID",
	"objectstorage.secretkey": "AWS_SECRET_ACCESS_KEY",
	"objectstorage.region":    "AWS_REGION",
	"registry.accountid":      "AWS_ACCOUNT_ID",
}

// InitCommandAndConfig initializes flags binding and common sub cmds.
// config is a pointer to configuration struct.
func InitCommandAndConfig(cmd *cobra.Command, useConfigFile bool, config any) {
	cobra.OnInitialize(func() { initConfig(useConfigFile, configName, config) })

	if !cmd.HasParent() {
		flags := cmd.PersistentFlags()
		flags.Bool("console", false, "whether logger output records to the stdout")
		flags.Bool("verbose", false, "whether logger use debug level")
		flags.Int("pprof-port", -1, "listen port for pprof and statsview, 0 represents random port")
		flags.String("jaeger", "", "jaeger collector endpoint url, like: http://localhost:14268/api/traces")
		flags.String("service-name", "", "name of the service for tracer")
		flags.String("config", "", fmt.Sprintf("the path of configuration file with yaml extension name, default is %s, it can also be set by env var: %s",
			filepath.Join(workpath.DefaultConfigDir, configName+".yaml"), strings.ToUpper(envPrefix+"_config")))

		if err := viper.BindPFlags(flags); err != nil {
			panic(fmt.Errorf("bind common flags to viper: %w", err))
		}

		if err := viper.BindPFlag("telemetry.jaeger", flags.Lookup("jaeger")); err != nil {
			panic(fmt.Errorf("bind jaeger flag to viper: %w", err))
		}

		if err := viper.BindPFlag("telemetry.service-name", flags.Lookup("service-name")); err != nil {
			panic(fmt.Errorf("bind service-name flag to viper: %w", err))
		}

		viper.SetEnvPrefix(envPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		viper.AutomaticEnv()
		_ = viper.BindEnv("config")
		for key, env := range envBindings {
			_ = viper.BindEnv(key, env)
		}

		cmd.AddCommand(VersionCmd)
	}
}

// InitMonitor starts pprof, statsview and the jaeger tracer,
// the returned func stops all of them.
func InitMonitor(pprofPort int, telemetry base.TelemetryOption) func() {
	var fc = make(chan func(), 5)

	if pprofPort >= 0 {
		go func() {
			if pprofPort == 0 {
				pprofPort, _ = freeport.GetFreePort()
			}

			debugAddr := fmt.Sprintf("%s:%d", net.IPv4zero.String(), pprofPort)
			viewer.SetConfiguration(viewer.WithAddr(debugAddr))

			logger.With("pprof", fmt.Sprintf("http://%s/debug/pprof", debugAddr),
				"statsview", fmt.Sprintf("http://%s/debug/statsview", debugAddr)).
				Infof("enable pprof at %s", debugAddr)

			vm := statsview.New()
			fc <- func() { vm.Stop() }
			if err := vm.Start(); err != nil {
				logger.Warnf("serve pprof error: %v", err)
			}
		}()
	}

	if telemetry.Jaeger != "" {
		shutdown, err := initJaegerTracer(telemetry)
		if err != nil {
			logger.Warnf("init jaeger tracer error: %v", err)
		} else {
			fc <- shutdown
		}
	}

	return func() {
		logger.Infof("do %d monitor finalizer", len(fc))
		for {
			select {
			case f := <-fc:
				f()
			default:
				return
			}
		}
	}
}

// SetupQuitSignalHandler calls handler once on the first SIGINT or SIGTERM.
func SetupQuitSignalHandler(handler func()) {
	var signals = make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var done bool
		for sig := range signals {
			logger.Warnf("receive %s signal", sig)
			if !done {
				done = true
				handler()
				logger.Infof("handle signal %s finish", sig)
			}
		}
	}()
}

func initConfig(useConfigFile bool, name string, config any) {
	if useConfigFile {
		if cfgFile := viper.GetString("config"); cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath(workpath.DefaultConfigDir)
			if home, err := os.UserHomeDir(); err == nil {
				viper.AddConfigPath(filepath.Join(home, "."+envPrefix))
			}
			viper.SetConfigName(name)
			viper.SetConfigType("yaml")
		}

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				panic(fmt.Errorf("read config file %s: %w", viper.ConfigFileUsed(), err))
			}
		}
	}

	if err := viper.Unmarshal(config, initDecoderConfig); err != nil {
		panic(fmt.Errorf("unmarshal config to struct: %w", err))
	}
}

func initDecoderConfig(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func initJaegerTracer(telemetry base.TelemetryOption) (func(), error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(telemetry.Jaeger)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(telemetry.ServiceName),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()

		if err := tp.Shutdown(ctx); err != nil {
			logger.Warnf("shutdown tracer provider error: %v", err)
		}
	}, nil
}
