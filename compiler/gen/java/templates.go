package java

import (
	"text/template"

	"github.com/schemaforge/schemaforge/naming"
)

var funcs = template.FuncMap{
	"pascal":   naming.Pascal,
	"camel":    naming.Camel,
	"snake":    naming.Snake,
	"kebab":    naming.Kebab,
	"plural":   naming.Plural,
	"singular": naming.Singular,
}

var templates = template.Must(template.New("java").Funcs(funcs).Parse(`
{{- define "entity" -}}
{{- if .Header}}// {{.Header}}
{{end -}}
package {{.Package}};

import jakarta.persistence.*;
{{range .Imports}}
import {{.}};
{{- end}}

@Entity
@Table(name = "{{.Table}}")
public class {{.Entity}} extends BaseEntity {

    @Id
{{- if .ID.Generated}}
    @GeneratedValue(strategy = GenerationType.{{.ID.Generated}})
{{- end}}
    @Column(name = "{{.ID.Column}}")
    private {{.ID.Type}} id;
{{range .Fields}}
    @Column(name = "{{.Column}}"{{if not .Nullable}}, nullable = false{{end}}{{if .Unique}}, unique = true{{end}})
    private {{.Type}} {{.Name}}{{if .Default}} = {{.Default}}{{end}};
{{end}}
{{- range .ManyToOnes}}
    @ManyToOne(fetch = FetchType.LAZY{{if not .Nullable}}, optional = false{{end}})
    @JoinColumn(name = "{{.Column}}"{{if not .Nullable}}, nullable = false{{end}})
    private {{.Entity}} {{.Field}};
{{end}}
{{- range .OneToManys}}
    @OneToMany(mappedBy = "{{.MappedBy}}")
    private List<{{.Entity}}> {{.Field}} = new ArrayList<>();
{{end}}
{{- range .ManyToManys}}
{{- if .Owning}}
    @ManyToMany
    @JoinTable(
        name = "{{.JoinTable}}",
        joinColumns = @JoinColumn(name = "{{.JoinColumn}}"),
        inverseJoinColumns = @JoinColumn(name = "{{.InverseJoinColumn}}")
    )
    private List<{{.Entity}}> {{.Field}} = new ArrayList<>();
{{- else}}
    @ManyToMany(mappedBy = "{{.MappedBy}}")
    private List<{{.Entity}}> {{.Field}} = new ArrayList<>();
{{- end}}
{{end}}
    public {{.ID.Type}} getId() {
        return id;
    }

    public void setId({{.ID.Type}} id) {
        this.id = id;
    }
{{range .Fields}}
    public {{.Type}} get{{pascal .Name}}() {
        return {{.Name}};
    }

    public void set{{pascal .Name}}({{.Type}} {{.Name}}) {
        this.{{.Name}} = {{.Name}};
    }
{{end}}
{{- range .ManyToOnes}}
    public {{.Entity}} get{{pascal .Field}}() {
        return {{.Field}};
    }

    public void set{{pascal .Field}}({{.Entity}} {{.Field}}) {
        this.{{.Field}} = {{.Field}};
    }
{{end}}
{{- range .OneToManys}}
    public List<{{.Entity}}> get{{pascal .Field}}() {
        return {{.Field}};
    }

    public void set{{pascal .Field}}(List<{{.Entity}}> {{.Field}}) {
        this.{{.Field}} = {{.Field}};
    }
{{end}}
{{- range .ManyToManys}}
    public List<{{.Entity}}> get{{pascal .Field}}() {
        return {{.Field}};
    }

    public void set{{pascal .Field}}(List<{{.Entity}}> {{.Field}}) {
        this.{{.Field}} = {{.Field}};
    }
{{end -}}
}
{{end}}

{{- define "dto" -}}
{{- if .Header}}// {{.Header}}
{{end -}}
package {{.Package}};
{{if .Imports}}
{{- range .Imports}}
import {{.}};
{{end}}
{{end -}}

public class {{.Entity}}DTO {

    private {{.IDType}} id;
{{range .Fields}}
    private {{.Type}} {{.Name}};
{{end}}
{{- range .RelationIds}}
    private {{.Type}} {{.Name}};
{{end}}
    public {{.IDType}} getId() {
        return id;
    }

    public void setId({{.IDType}} id) {
        this.id = id;
    }
{{range .Fields}}
    public {{.Type}} get{{pascal .Name}}() {
        return {{.Name}};
    }

    public void set{{pascal .Name}}({{.Type}} {{.Name}}) {
        this.{{.Name}} = {{.Name}};
    }
{{end}}
{{- range .RelationIds}}
    public {{.Type}} get{{pascal .Name}}() {
        return {{.Name}};
    }

    public void set{{pascal .Name}}({{.Type}} {{.Name}}) {
        this.{{.Name}} = {{.Name}};
    }
{{end -}}
}
{{end}}

{{- define "mapper" -}}
{{- if .Header}}// {{.Header}}
{{end -}}
package {{.Package}};
{{if .Imports}}
{{- range .Imports}}
import {{.}};
{{end}}
{{end -}}

public final class {{.Entity}}Mapper {

    private {{.Entity}}Mapper() {
    }

    public static {{.Entity}}DTO toDTO({{.Entity}} entity) {
        if (entity == null) {
            return null;
        }
        {{.Entity}}DTO dto = new {{.Entity}}DTO();
        dto.setId(entity.getId());
{{- range .Fields}}
        dto.set{{pascal .Name}}(entity.get{{pascal .Name}}());
{{- end}}
{{- range .ManyToOnes}}
        if (entity.get{{pascal .Field}}() != null) {
            dto.set{{pascal .IdField}}(entity.get{{pascal .Field}}().getId());
        }
{{- end}}
{{- range .ManyToManys}}
        dto.set{{pascal .IdField}}(entity.get{{pascal .Field}}().stream()
                .map({{.Entity}}::getId)
                .collect(Collectors.toList()));
{{- end}}
        return dto;
    }

    public static {{.Entity}} toEntity({{.Entity}}DTO dto) {
        if (dto == null) {
            return null;
        }
        {{.Entity}} entity = new {{.Entity}}();
{{- range .Fields}}
        entity.set{{pascal .Name}}(dto.get{{pascal .Name}}());
{{- end}}
        return entity;
    }
}
{{end}}

{{- define "repository" -}}
{{- if .Header}}// {{.Header}}
{{end -}}
package {{.Package}};

{{if .IDImport}}import {{.IDImport}};

{{end -}}
import org.springframework.data.jpa.repository.JpaRepository;
import org.springframework.stereotype.Repository;

import {{.EntityImport}};

@Repository
public interface {{.Entity}}Repository extends JpaRepository<{{.Entity}}, {{.IDType}}> {
}
{{end}}

{{- define "service" -}}
{{- if .Header}}// {{.Header}}
{{end -}}
package {{.Package}};

import java.util.List;
import java.util.stream.Collectors;

import jakarta.persistence.EntityNotFoundException;
import org.springframework.stereotype.Service;
import org.springframework.transaction.annotation.Transactional;
{{range .Imports}}
import {{.}};
{{- end}}

@Service
@Transactional
public class {{.Entity}}Service {

    private final {{.Entity}}Repository repository;

    public {{.Entity}}Service({{.Entity}}Repository repository) {
        this.repository = repository;
    }

    @Transactional(readOnly = true)
    public List<{{.Entity}}DTO> findAll() {
        return repository.findAll().stream()
                .map({{.Entity}}Mapper::toDTO)
                .collect(Collectors.toList());
    }

    @Transactional(readOnly = true)
    public {{.Entity}}DTO findById({{.IDType}} id) {
        return repository.findById(id)
                .map({{.Entity}}Mapper::toDTO)
                .orElseThrow(() -> new EntityNotFoundException("{{.Entity}} " + id + " not found"));
    }

    public {{.Entity}}DTO create({{.Entity}}DTO dto) {
        {{.Entity}} entity = {{.Entity}}Mapper.toEntity(dto);
        return {{.Entity}}Mapper.toDTO(repository.save(entity));
    }

    public {{.Entity}}DTO update({{.IDType}} id, {{.Entity}}DTO dto) {
        {{.Entity}} entity = repository.findById(id)
                .orElseThrow(() -> new EntityNotFoundException("{{.Entity}} " + id + " not found"));
{{- range .Fields}}
        entity.set{{pascal .Name}}(dto.get{{pascal .Name}}());
{{- end}}
        return {{.Entity}}Mapper.toDTO(repository.save(entity));
    }

    public void delete({{.IDType}} id) {
        if (!repository.existsById(id)) {
            throw new EntityNotFoundException("{{.Entity}} " + id + " not found");
        }
        repository.deleteById(id);
    }
}
{{end}}

{{- define "controller" -}}
{{- if .Header}}// {{.Header}}
{{end -}}
package {{.Package}};

import java.util.List;

import org.springframework.http.HttpStatus;
import org.springframework.web.bind.annotation.*;
{{range .Imports}}
import {{.}};
{{- end}}

@RestController
@RequestMapping("/api/{{.Path}}")
public class {{.Entity}}Controller {

    private final {{.Entity}}Service service;

    public {{.Entity}}Controller({{.Entity}}Service service) {
        this.service = service;
    }

    @GetMapping
    public List<{{.Entity}}DTO> list() {
        return service.findAll();
    }

    @GetMapping("/{id}")
    public {{.Entity}}DTO get(@PathVariable {{.IDType}} id) {
        return service.findById(id);
    }

    @PostMapping
    @ResponseStatus(HttpStatus.CREATED)
    public {{.Entity}}DTO create(@RequestBody {{.Entity}}DTO dto) {
        return service.create(dto);
    }

    @PutMapping("/{id}")
    public {{.Entity}}DTO update(@PathVariable {{.IDType}} id, @RequestBody {{.Entity}}DTO dto) {
        return service.update(id, dto);
    }

    @DeleteMapping("/{id}")
    @ResponseStatus(HttpStatus.NO_CONTENT)
    public void delete(@PathVariable {{.IDType}} id) {
        service.delete(id);
    }
}
{{end}}

{{- define "base_entity" -}}
{{- if .Header}}// {{.Header}}
{{end -}}
package {{.Package}};

import jakarta.persistence.*;
{{range .Imports}}
import {{.}};
{{- end}}

@MappedSuperclass
public abstract class BaseEntity {
{{range .Audit}}
    {{if .Version}}@Version
    {{end -}}
    @Column(name = "{{.Column}}"{{if not .Nullable}}, nullable = false{{end}})
    private {{.Type}} {{.Name}};
{{end}}
{{- range .Audit}}
    public {{.Type}} get{{pascal .Name}}() {
        return {{.Name}};
    }

    public void set{{pascal .Name}}({{.Type}} {{.Name}}) {
        this.{{.Name}} = {{.Name}};
    }
{{end -}}
}
{{end}}
`))
