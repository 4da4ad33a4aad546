package params

import (
	"io/ioutil"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// LoadChainConfigFile loads a yaml chain config file, unmarshals it on top of
// the default configuration and applies the result as the active beacon chain
// config. Unknown keys are rejected so a typo never silently falls back to a
// default value.
func LoadChainConfigFile(chainConfigFileName string) {
	yamlFile, err := ioutil.ReadFile(chainConfigFileName) // #nosec G304
	if err != nil {
		log.WithError(err).Fatal("Failed to read chain config file.")
	}
	conf := BeaconConfig().Copy()
	if err := yaml.UnmarshalStrict(yamlFile, conf); err != nil {
		log.WithError(err).Fatal("Failed to parse chain config yaml file.")
	}
	log.Debugf("Config file values: %+v", conf)
	OverrideBeaconConfig(conf)
}
