package generate

import (
	"path/filepath"
	"strings"
	"text/template"

	"github.com/open-simulation-platform/cosimpkg/internal/graph"
)

var configTmpl = template.Must(template.New("config").Funcs(funcs).Parse(`# Generated by cosimpkg for {{.Ref}}. Do not edit.
if(TARGET {{.Target}})
  return()
endif()

set({{.Name}}_FOUND TRUE)
set({{.Name}}_VERSION {{quote .Version}})
set({{.Name}}_INCLUDE_DIRS {{pathList .IncludeDirs}})
set({{.Name}}_LIB_DIRS {{pathList .LibDirs}})
set({{.Name}}_BIN_DIRS {{pathList .BinDirs}})
set({{.Name}}_LIBRARIES "")
foreach(_lib {{range .Libs}}{{quote .}} {{end}})
  find_library(_found_${_lib} NAMES ${_lib} PATHS ${ {{- .Name}}_LIB_DIRS} NO_DEFAULT_PATH)
  if(_found_${_lib})
    list(APPEND {{.Name}}_LIBRARIES "${_found_${_lib}}")
  else()
    list(APPEND {{.Name}}_LIBRARIES "${_lib}")
  endif()
endforeach()

add_library({{.Target}} INTERFACE IMPORTED)
set_target_properties({{.Target}} PROPERTIES
  INTERFACE_INCLUDE_DIRECTORIES "${ {{- .Name}}_INCLUDE_DIRS}"
  INTERFACE_LINK_DIRECTORIES "${ {{- .Name}}_LIB_DIRS}"
  INTERFACE_LINK_LIBRARIES "${ {{- .Name}}_LIBRARIES}")
`))

var versionTmpl = template.Must(template.New("version").Funcs(funcs).Parse(`# Generated by cosimpkg for {{.Ref}}. Do not edit.
set(PACKAGE_VERSION {{quote .Version}})
if(PACKAGE_FIND_VERSION VERSION_GREATER PACKAGE_VERSION)
  set(PACKAGE_VERSION_COMPATIBLE FALSE)
else()
  set(PACKAGE_VERSION_COMPATIBLE TRUE)
  if(PACKAGE_FIND_VERSION STREQUAL PACKAGE_VERSION)
    set(PACKAGE_VERSION_EXACT TRUE)
  endif()
endif()
`))

type depData struct {
	Ref, Name, Target, Version string

	IncludeDirs, LibDirs, BinDirs, Libs []string
}

// ConfigFileName returns the package config file name of dependency name.
func ConfigFileName(name string) string {
	return strings.ToLower(name) + "-config.cmake"
}

// Deps writes "<name>-config.cmake" and "<name>-config-version.cmake" for
// every dependency into dir, making them available to find_package in
// config mode. It returns the written paths.
func Deps(dir string, deps []*graph.Node) ([]string, error) {
	var files []string
	for _, dep := range deps {
		info := dep.Root()
		data := depData{
			Ref:         dep.Ref.String(),
			Name:        dep.Ref.Name,
			Target:      dep.Ref.Name + "::" + dep.Ref.Name,
			Version:     dep.Ref.Version,
			IncludeDirs: info.IncludeDirs,
			LibDirs:     info.LibDirs,
			BinDirs:     info.BinDirs,
			Libs:        info.Libs,
		}
		for _, t := range []struct {
			tmpl *template.Template
			file string
		}{
			{configTmpl, ConfigFileName(dep.Ref.Name)},
			{versionTmpl, strings.ToLower(dep.Ref.Name) + "-config-version.cmake"},
		} {
			var b strings.Builder
			if err := t.tmpl.Execute(&b, data); err != nil {
				return files, err
			}
			file := filepath.Join(dir, t.file)
			if err := writeFile(file, b.String()); err != nil {
				return files, err
			}
			files = append(files, file)
		}
	}
	return files, nil
}
