// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"io/ioutil"

	"github.com/alicefw/alice"
	"github.com/alicefw/alice/dict"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/validator.v9"
	"gopkg.in/yaml.v2"
)

// profile is an encoder profile loaded from YAML. Absent fields keep the
// vendor defaults.
//
// Example:
//	lengths: [4, 6, 7, 8, 9, 11, 12]
//	block_size: 64
//	base: 0x10000000
//	version: 2
//	relocate: true
type profile struct {
	Lengths   []uint `yaml:"lengths" validate:"omitempty,len=7,dive,max=16"`
	BlockSize int    `yaml:"block_size" validate:"omitempty,min=2,max=65534,even"`
	Base      uint32 `yaml:"base"`
	Version   int    `yaml:"version" validate:"omitempty,min=1,max=2"`
	Relocate  *bool  `yaml:"relocate"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	})
	return v
}

// parseProfile decodes and validates a profile. Unknown keys are rejected.
func parseProfile(data []byte) (*profile, error) {
	p := new(profile)
	if err := yaml.UnmarshalStrict(data, p); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	if err := newValidator().Struct(p); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	return p, nil
}

func loadProfile(file string) (*profile, error) {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read profile %s", file)
	}
	p, err := parseProfile(data)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	return p, nil
}

// encoderConfig converts the profile into library settings.
func (p *profile) encoderConfig() *alice.EncoderConfig {
	conf := &alice.EncoderConfig{
		BlockSize: p.BlockSize,
		Base:      p.Base,
		Version:   alice.Version(p.Version),
	}
	if len(p.Lengths) == len(dict.Lengths{}) {
		conf.Lengths = new(dict.Lengths)
		copy(conf.Lengths[:], p.Lengths)
	}
	if p.Relocate != nil {
		conf.NoRelocate = !*p.Relocate
	}
	return conf
}
