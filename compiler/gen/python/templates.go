package python

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

var templates = template.Must(template.New("python").Funcs(funcs).Parse(`
{{- define "model" -}}
"""{{.Entity}} persistence model."""

from __future__ import annotations
{{if .StdImports}}
{{- range .StdImports}}
{{.}}
{{- end}}
{{end}}
from sqlalchemy import {{.SAImports}}
from sqlalchemy.orm import Mapped, mapped_column{{if .HasRelations}}, relationship{{end}}

from app.core.base import AuditBase


class {{.Entity}}(AuditBase):
    __tablename__ = "{{.Table}}"

    id: Mapped[{{.IDPyType}}] = mapped_column({{.IDArgs}})
{{range .Fields}}
    {{.Name}}: Mapped[{{.PyType}}] = mapped_column({{.SAType}}, nullable={{.NullablePy}}{{if .Unique}}, unique=True{{end}}{{if .Default}}, default={{.Default}}{{end}})
{{- end}}
{{- range .ForeignKeys}}
    {{.Name}}: Mapped[{{.PyType}}] = mapped_column(ForeignKey("{{.RefTable}}.{{.RefColumn}}"), nullable={{.NullablePy}})
{{- end}}
{{- if .ManyToOnes}}
{{range .ManyToOnes}}
    {{.Name}}: Mapped["{{.Entity}}"] = relationship("{{.Entity}}", back_populates="{{.BackPopulates}}", foreign_keys="{{.OwnEntity}}.{{.Column}}")
{{- end}}
{{- end}}
{{- if .OneToManys}}
{{range .OneToManys}}
    {{.Name}}: Mapped[list["{{.Entity}}"]] = relationship("{{.Entity}}", back_populates="{{.BackPopulates}}", foreign_keys="{{.Entity}}.{{.Column}}")
{{- end}}
{{- end}}
{{- if .ManyToManys}}
{{range .ManyToManys}}
    {{.Name}}: Mapped[list["{{.Entity}}"]] = relationship("{{.Entity}}", secondary="{{.Secondary}}", back_populates="{{.BackPopulates}}")
{{- end}}
{{- end}}
{{end}}

{{- define "schema" -}}
"""{{.Entity}} API schemas."""

from __future__ import annotations
{{if .StdImports}}
{{- range .StdImports}}
{{.}}
{{- end}}
{{end}}
from pydantic import BaseModel, ConfigDict


class {{.Entity}}Schema(BaseModel):
    model_config = ConfigDict(from_attributes=True)

    id: {{.IDType}} | None = None
{{- range .Fields}}
    {{.Name}}: {{.PyType}}{{if .Default}} = {{.Default}}{{end}}
{{- end}}
{{- range .RelationIds}}
    {{.Name}}: {{.PyType}}{{if .Default}} = {{.Default}}{{end}}
{{- end}}
{{end}}

{{- define "mapper" -}}
"""Mapping between {{.Entity}} models and schemas."""

from app.models.{{.Singular}} import {{.Entity}}
from app.schemas.{{.Singular}} import {{.Entity}}Schema


def to_schema(model: {{.Entity}}) -> {{.Entity}}Schema:
    return {{.Entity}}Schema(
        id=model.id,
{{- range .Fields}}
        {{.Name}}=model.{{.Name}},
{{- end}}
{{- range .ManyToOnes}}
        {{.IdField}}=model.{{.IdField}},
{{- end}}
{{- range .ManyToManys}}
        {{.IdField}}=[item.id for item in model.{{.Name}}],
{{- end}}
    )


def to_model(schema: {{.Entity}}Schema) -> {{.Entity}}:
    return {{.Entity}}(
{{- range .Fields}}
        {{.Name}}=schema.{{.Name}},
{{- end}}
{{- range .ManyToOnes}}
        {{.IdField}}=schema.{{.IdField}},
{{- end}}
    )
{{end}}

{{- define "repository" -}}
"""Data access for {{.Entity}}."""
{{if .IDImport}}
{{.IDImport}}
{{end}}
from sqlalchemy import select
from sqlalchemy.orm import Session

from app.models.{{.Singular}} import {{.Entity}}


class {{.Entity}}Repository:
    def __init__(self, session: Session) -> None:
        self._session = session

    def list(self) -> list[{{.Entity}}]:
        return list(self._session.scalars(select({{.Entity}})))

    def get(self, entity_id: {{.IDType}}) -> {{.Entity}} | None:
        return self._session.get({{.Entity}}, entity_id)

    def create(self, model: {{.Entity}}) -> {{.Entity}}:
        self._session.add(model)
        self._session.flush()
        return model

    def delete(self, model: {{.Entity}}) -> None:
        self._session.delete(model)
{{end}}

{{- define "service" -}}
"""Business operations for {{.Entity}}."""
{{if .IDImport}}
{{.IDImport}}
{{end}}
from fastapi import HTTPException, status

from app.mappers import {{.Singular}} as {{.Singular}}_mapper
from app.repositories.{{.Singular}} import {{.Entity}}Repository
from app.schemas.{{.Singular}} import {{.Entity}}Schema


class {{.Entity}}Service:
    def __init__(self, repository: {{.Entity}}Repository) -> None:
        self._repository = repository

    def list(self) -> list[{{.Entity}}Schema]:
        return [{{.Singular}}_mapper.to_schema(model) for model in self._repository.list()]

    def get(self, entity_id: {{.IDType}}) -> {{.Entity}}Schema:
        model = self._get_or_404(entity_id)
        return {{.Singular}}_mapper.to_schema(model)

    def create(self, schema: {{.Entity}}Schema) -> {{.Entity}}Schema:
        model = {{.Singular}}_mapper.to_model(schema)
        return {{.Singular}}_mapper.to_schema(self._repository.create(model))

    def update(self, entity_id: {{.IDType}}, schema: {{.Entity}}Schema) -> {{.Entity}}Schema:
        model = self._get_or_404(entity_id)
{{- range .Fields}}
        model.{{.Name}} = schema.{{.Name}}
{{- end}}
{{- range .ManyToOnes}}
        model.{{.IdField}} = schema.{{.IdField}}
{{- end}}
        return {{.Singular}}_mapper.to_schema(model)

    def delete(self, entity_id: {{.IDType}}) -> None:
        model = self._get_or_404(entity_id)
        self._repository.delete(model)

    def _get_or_404(self, entity_id: {{.IDType}}):
        model = self._repository.get(entity_id)
        if model is None:
            raise HTTPException(
                status_code=status.HTTP_404_NOT_FOUND,
                detail="{{.Entity}} not found",
            )
        return model
{{end}}

{{- define "router" -}}
"""HTTP routes for {{.Entity}}."""
{{if .IDImport}}
{{.IDImport}}
{{end}}
from fastapi import APIRouter, Depends, status
from sqlalchemy.orm import Session

from app.core.database import get_session
from app.repositories.{{.Singular}} import {{.Entity}}Repository
from app.schemas.{{.Singular}} import {{.Entity}}Schema
from app.services.{{.Singular}} import {{.Entity}}Service

router = APIRouter(prefix="/api/{{.Path}}", tags=["{{.Path}}"])


def _service(session: Session = Depends(get_session)) -> {{.Entity}}Service:
    return {{.Entity}}Service({{.Entity}}Repository(session))


@router.get("", response_model=list[{{.Entity}}Schema])
def list_{{.Plural}}(service: {{.Entity}}Service = Depends(_service)) -> list[{{.Entity}}Schema]:
    return service.list()


@router.get("/{entity_id}", response_model={{.Entity}}Schema)
def get_{{.Singular}}(entity_id: {{.IDType}}, service: {{.Entity}}Service = Depends(_service)) -> {{.Entity}}Schema:
    return service.get(entity_id)


@router.post("", response_model={{.Entity}}Schema, status_code=status.HTTP_201_CREATED)
def create_{{.Singular}}(schema: {{.Entity}}Schema, service: {{.Entity}}Service = Depends(_service)) -> {{.Entity}}Schema:
    return service.create(schema)


@router.put("/{entity_id}", response_model={{.Entity}}Schema)
def update_{{.Singular}}(
    entity_id: {{.IDType}},
    schema: {{.Entity}}Schema,
    service: {{.Entity}}Service = Depends(_service),
) -> {{.Entity}}Schema:
    return service.update(entity_id, schema)


@router.delete("/{entity_id}", status_code=status.HTTP_204_NO_CONTENT)
def delete_{{.Singular}}(entity_id: {{.IDType}}, service: {{.Entity}}Service = Depends(_service)) -> None:
    service.delete(entity_id)
{{end}}

{{- define "base" -}}
"""Declarative base and the shared audit columns."""

from __future__ import annotations
{{if .StdImports}}
{{- range .StdImports}}
{{.}}
{{- end}}
{{end}}
from sqlalchemy import {{.SAImports}}
from sqlalchemy.orm import DeclarativeBase, Mapped, mapped_column


class Base(DeclarativeBase):
    pass


class AuditBase(Base):
    """Every generated model inherits the audit set."""

    __abstract__ = True
{{- range .Audit}}
    {{.Name}}: Mapped[{{.PyType}}] = mapped_column({{.SAType}}, nullable={{.NullablePy}}{{if .Default}}, default={{.Default}}{{end}})
{{- end}}
{{end}}

{{- define "database" -}}
"""Engine and session wiring."""

from collections.abc import Iterator

from sqlalchemy import create_engine
from sqlalchemy.orm import Session, sessionmaker

engine = create_engine("postgresql+psycopg://localhost:5432/{{.Database}}", pool_pre_ping=True)
SessionLocal = sessionmaker(bind=engine, expire_on_commit=False)


def get_session() -> Iterator[Session]:
    session = SessionLocal()
    try:
        yield session
        session.commit()
    except Exception:
        session.rollback()
        raise
    finally:
        session.close()
{{end}}

{{- define "migration" -}}
"""create {{.Table}}"""

import sqlalchemy as sa
from alembic import op

revision = "{{.Revision}}"
down_revision = {{.DownRevision}}
branch_labels = None
depends_on = None


def upgrade() -> None:
    op.create_table(
        "{{.Table}}",
        sa.Column("{{.IDName}}", sa.{{.IDSAType}}, primary_key=True{{if .Autoincrement}}, autoincrement=True{{end}}),
{{- range .Columns}}
        sa.Column("{{.Name}}", sa.{{.SAType}}, nullable={{.NullablePy}}{{if .ServerDefault}}, server_default={{.ServerDefault}}{{end}}),
{{- end}}
{{- range .ForeignKeys}}
        sa.ForeignKeyConstraint(["{{.Column}}"], ["{{.RefTable}}.{{.RefColumn}}"], name="fk_{{$.Table}}_{{.Column}}"),
{{- end}}
{{- range .UniqueConstraints}}
        sa.UniqueConstraint({{.Columns}}, name="{{.Name}}"),
{{- end}}
    )
{{- range .Indexes}}
    op.create_index("idx_{{$.Table}}_{{.}}", "{{$.Table}}", ["{{.}}"])
{{- end}}


def downgrade() -> None:
{{- range .Indexes}}
    op.drop_index("idx_{{$.Table}}_{{.}}", table_name="{{$.Table}}")
{{- end}}
    op.drop_table("{{.Table}}")
{{end}}
`))
