package icons

// File represents the top-level structure of icons.yaml
//
//	icons:
//	  - name: kubernetes
//	    icon: Ship
//	    aliases: [k8s, kube]
type File struct {
	Icons []Entry `yaml:"icons"`
}

// Entry maps one symbolic name (plus aliases) to an icon-set name
type Entry struct {
	Name    string   `yaml:"name"`
	Icon    string   `yaml:"icon"`
	Aliases []string `yaml:"aliases,omitempty"`
}
